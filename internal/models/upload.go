package models

// UploadRequest is a single form submission. It is handed to the dispatcher
// once and dropped after the request is sent.
type UploadRequest struct {
	FileName       string
	ContentType    string
	Data           []byte
	JobDescription string
}

// HasFile reports whether a resume was attached. An empty file still counts;
// the review API decides whether it is readable.
func (u *UploadRequest) HasFile() bool {
	return u != nil && u.FileName != ""
}
