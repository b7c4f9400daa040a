package config

// UploadRule bounds one kind of user upload.
type UploadRule struct {
	MaxSize      int64
	AllowedTypes []string
}

var AvatarUpload = UploadRule{
	MaxSize:      5 * 1024 * 1024,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
}

var DocumentUpload = UploadRule{
	MaxSize:      10 * 1024 * 1024,
	AllowedTypes: []string{"application/pdf", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// Allows reports whether contentType is accepted by the rule.
func (r UploadRule) Allows(contentType string) bool {
	for _, t := range r.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
