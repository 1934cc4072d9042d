package model

import "strings"

// DefaultSector is assigned to contacts stored without a sector.
const DefaultSector = "Sem Setor"

type Contact struct {
	Id     int    `json:"id" storm:"id,increment" gorm:"primaryKey;autoIncrement"`
	Name   string `json:"name" gorm:"size:255;not null"`
	Phone  string `json:"phone" storm:"unique" gorm:"size:64;not null;uniqueIndex"`
	Email  string `json:"email" gorm:"size:255;not null"`
	Sector string `json:"sector" storm:"index" gorm:"size:255;not null;index"`
}

// SectorOrDefault returns sector, or DefaultSector when it is blank.
func SectorOrDefault(sector string) string {
	if strings.TrimSpace(sector) == "" {
		return DefaultSector
	}
	return sector
}
