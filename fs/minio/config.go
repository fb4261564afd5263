package minio

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/minio/internal/pathutil"
	"github.com/jmgilman/go/filestore/secrets"
)

// Settings holds the connection parameters of a bucket.
type Settings struct {
	// Endpoint is the server address without scheme (e.g., "localhost:9000").
	Endpoint string

	// Bucket is the S3 bucket name.
	Bucket string

	// AccessKey is the access key ID for authentication.
	AccessKey string

	// SecretKey is the secret access key for authentication.
	SecretKey string

	// Secure enables HTTPS connections.
	Secure bool

	// Prefix is an optional key prefix that acts as the store root.
	Prefix string

	// Client is an optional pre-configured client. When set, Endpoint,
	// AccessKey and SecretKey are ignored.
	Client *minio.Client
}

var bucketName = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)

// validate checks that either Client or the credentials are present and that
// the bucket name is usable.
func (s *Settings) validate() error {
	noClient := s.Client == nil
	err := validation.ValidateStruct(s,
		validation.Field(&s.Bucket,
			validation.Required,
			validation.Length(3, 63),
			validation.Match(bucketName).Error("must be a valid S3 bucket name")),
		validation.Field(&s.Endpoint,
			validation.When(noClient, validation.Required),
			validation.By(noScheme)),
		validation.Field(&s.AccessKey, validation.When(noClient, validation.Required)),
		validation.Field(&s.SecretKey, validation.When(noClient, validation.Required)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid minio settings")
	}
	return nil
}

func noScheme(value interface{}) error {
	if s, _ := value.(string); strings.Contains(s, "://") {
		return validation.NewError("validation_endpoint", "must be host[:port] without a scheme")
	}
	return nil
}

// settingsFrom fetches connection parameters from sec. The root secret is
// optional; every other missing secret fails with CodeSecretNotProvided.
func settingsFrom(sec secrets.Provider, secure bool, client *minio.Client) (Settings, error) {
	s := Settings{Secure: secure, Client: client}

	type field struct {
		name string
		dst  *string
	}
	required := []field{{secrets.Share, &s.Bucket}}
	if client == nil {
		required = append(required,
			field{secrets.Host, &s.Endpoint},
			field{secrets.User, &s.AccessKey},
			field{secrets.Password, &s.SecretKey},
		)
	}
	for _, r := range required {
		v, err := sec.Get(r.name)
		if err != nil {
			return Settings{}, err
		}
		*r.dst = strings.TrimSpace(v)
	}

	root, err := sec.Get(secrets.Root)
	switch {
	case err == nil:
		s.Prefix = pathutil.NormalizePrefix(root)
	case !secrets.IsNotProvided(err):
		return Settings{}, err
	}

	return s, s.validate()
}
