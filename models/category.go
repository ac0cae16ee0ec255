package models

// Category is a node of the catalog tree. Parent links are the source of
// truth; the nested-set columns are derived from them after every write.
type Category struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Name     string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug     string     `gorm:"type:varchar(150);not null;index" json:"slug"`
	IsActive bool       `gorm:"not null" json:"is_active"`
	ParentID *uint      `gorm:"index" json:"parent_id"`
	Parent   *Category  `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"-"`
	Children []Category `gorm:"foreignKey:ParentID" json:"-"`

	Lft    int `gorm:"column:lft;not null;default:0;index" json:"lft"`
	Rght   int `gorm:"column:rght;not null;default:0;index" json:"rght"`
	TreeID int `gorm:"column:tree_id;not null;default:0;index" json:"tree_id"`
	Level  int `gorm:"column:level;not null;default:0" json:"level"`
}

func (Category) TableName() string { return "categories" }

func (c Category) String() string { return c.Name }

// CategoryNode is the nested representation returned by the tree endpoint.
type CategoryNode struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	IsActive bool            `json:"is_active"`
	Level    int             `json:"level"`
	Children []*CategoryNode `json:"children"`
}

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Slug     string `json:"slug" binding:"required,max=150,slug"`
	IsActive *bool  `json:"is_active"`
	ParentID *uint  `json:"parent_id"`
}
