package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ProjectMethod represents the abatement method of a project
type ProjectMethod string

const (
	ProjectMethodSoilCarbon  ProjectMethod = "Soil Carbon"
	ProjectMethodVegetation  ProjectMethod = "Vegetation"
	ProjectMethodLandfillGas ProjectMethod = "Landfill Gas"
)

func (m ProjectMethod) Valid() bool {
	switch m {
	case ProjectMethodSoilCarbon, ProjectMethodVegetation, ProjectMethodLandfillGas:
		return true
	}
	return false
}

// ProjectMethodType distinguishes sequestration from avoidance methods
type ProjectMethodType string

const (
	MethodTypeSequestering ProjectMethodType = "Sequestering"
	MethodTypeAvoidance    ProjectMethodType = "Avoidance"
)

func (t ProjectMethodType) Valid() bool {
	return t == MethodTypeSequestering || t == MethodTypeAvoidance
}

// Project represents a carbon-abatement project referenced by ACCU batches
type Project struct {
	ID         uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string            `gorm:"column:name;not null;size:200" json:"name"`
	Method     ProjectMethod     `gorm:"column:method;type:varchar(30);not null" json:"method"`
	MethodType ProjectMethodType `gorm:"column:method_type;type:varchar(20);not null" json:"methodType"`
	Batches    []ACCU            `gorm:"foreignKey:ProjectID" json:"-"`
	CreatedAt  time.Time         `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate validates the enum columns before insert
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if !p.Method.Valid() {
		return errors.New("method must be Soil Carbon, Vegetation or Landfill Gas")
	}
	if !p.MethodType.Valid() {
		return errors.New("methodType must be Sequestering or Avoidance")
	}
	return nil
}
