package media

import "errors"

var (
	ErrVideoTimeout     = errors.New("video generation timed out")
	ErrUnsupportedEdit  = errors.New("image modifications are not supported")
	ErrImageRequired    = errors.New("an input image is required")
	ErrUndecodableImage = errors.New("could not decode image")
)

// Result is what commands forward to the user: a file on success,
// Message otherwise.
type Result struct {
	Success     bool
	Data        []byte
	Message     string
	Description string
}

func success(data []byte, description string) Result {
	return Result{Success: true, Data: data, Description: description}
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}
