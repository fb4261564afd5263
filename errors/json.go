package errors

import (
	"encoding/json"
)

// ErrorResponse is the JSON document for an error. Causes are omitted; the
// code and context identify the failing operation and path.
type ErrorResponse struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Classification string                 `json:"classification"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// ToJSON describes err as an ErrorResponse, or returns nil for a nil err.
//
//	if err := store.Remove(path); err != nil {
//	    _ = json.NewEncoder(os.Stderr).Encode(errors.ToJSON(err))
//	}
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	pe, ok := outermost(err)
	if !ok {
		return &ErrorResponse{
			Code:           string(CodeUnknown),
			Message:        err.Error(),
			Classification: string(ClassificationPermanent),
		}
	}
	return &ErrorResponse{
		Code:           string(pe.Code()),
		Message:        pe.Message(),
		Classification: string(pe.Classification()),
		Context:        pe.Context(),
	}
}

// MarshalJSON encodes the error as an ErrorResponse.
func (e *platformError) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(ErrorResponse{
		Code:           string(e.code),
		Message:        e.msg,
		Classification: string(e.class),
		Context:        e.ctx,
	})
	if err != nil {
		return nil, Wrap(err, CodeInternal, "encode error response")
	}
	return data, nil
}
