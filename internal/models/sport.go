package models

// Sport identifies a discipline teams compete in.
type Sport struct {
	BaseModel

	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
