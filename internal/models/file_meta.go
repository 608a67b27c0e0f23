package models

// FileMeta is the column set shared by every stored file: the user-supplied
// original name is kept for display only, the stored name is the random token
// on disk, and the relative path always uses forward slashes.
type FileMeta struct {
	OriginalName string `gorm:"size:255;not null"`
	StoredName   string `gorm:"size:64;not null"`
	RelPath      string `gorm:"size:512;not null"`
	MIME         string `gorm:"column:mime;size:128"`
	Size         int64  `gorm:"not null;default:0"`
}
