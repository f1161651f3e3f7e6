package members

// Error is an application-layer error carrying enough structure for the view
// layer to present it (status bucket, stable code, human message).
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}
