package apiclient

import (
	"io"

	"github.com/Adda-Baaj/lekha/pkg/httpclient"
)

// File is a binary payload destined for a multipart field.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Form is an ordered multipart/form-data payload. Header holds extra request
// headers for the form request; the client's default headers are never added
// to form requests.
type Form struct {
	parts  []httpclient.Part
	Header map[string]string
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Append adds a plain field.
func (f *Form) Append(name string, value any) *Form {
	f.parts = append(f.parts, httpclient.Part{Name: name, Value: formatValue(value)})
	return f
}

// AppendFile adds a file field.
func (f *Form) AppendFile(name string, file File) *Form {
	f.parts = append(f.parts, httpclient.Part{
		Name:        name,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Reader:      file.Reader,
	})
	return f
}

// SetHeader sets a header sent with this form only.
func (f *Form) SetHeader(key, value string) *Form {
	if f.Header == nil {
		f.Header = make(map[string]string, 1)
	}
	f.Header[key] = value
	return f
}

// Len returns the number of parts.
func (f *Form) Len() int {
	if f == nil {
		return 0
	}
	return len(f.parts)
}

// Parts returns a copy of the parts in insertion order.
func (f *Form) Parts() []httpclient.Part {
	if f == nil {
		return nil
	}
	out := make([]httpclient.Part, len(f.parts))
	copy(out, f.parts)
	return out
}
