package secrets

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/jmgilman/go/filestore/errors"
)

// Prompt asks for secrets on the controlling terminal with echo disabled.
// Answers are remembered for the life of the Prompt. When input is not a
// terminal every lookup is not provided.
type Prompt struct {
	in  *os.File
	out io.Writer

	isTerminal   func(fd int) bool
	readPassword func(fd int) ([]byte, error)

	mu      sync.Mutex
	answers map[string]string
}

// NewPrompt returns a Prompt reading from stdin and writing labels to stderr.
func NewPrompt() *Prompt {
	return &Prompt{
		in:           os.Stdin,
		out:          os.Stderr,
		isTerminal:   term.IsTerminal,
		readPassword: term.ReadPassword,
		answers:      make(map[string]string),
	}
}

// Get implements Provider.
func (p *Prompt) Get(name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.answers[name]; ok {
		return v, nil
	}

	fd := int(p.in.Fd())
	if !p.isTerminal(fd) {
		return "", NotProvided(name, "prompt")
	}

	fmt.Fprintf(p.out, "filestore %s: ", name)
	b, err := p.readPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeSecretNotProvided, "failed to read from terminal",
			map[string]interface{}{"secret": name, "source": "prompt"})
	}

	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", NotProvided(name, "prompt")
	}
	p.answers[name] = v
	return v, nil
}
