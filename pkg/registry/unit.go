package registry

// Unit types as published by region-id.
const (
	TypeVillage      = "village"
	TypeUrbanVillage = "urban_village"
)

// Unit is one administrative unit (desa or kelurahan) of the registry.
// Code is the normalized, digits-only Kemendagri code.
type Unit struct {
	Code         string `json:"village_code"`
	Name         string `json:"village_name"`
	Type         string `json:"village_type"`
	DistrictCode string `json:"district_code,omitempty"`
	DistrictName string `json:"district_name,omitempty"`
	RegencyCode  string `json:"regency_code,omitempty"`
	RegencyName  string `json:"regency_name,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	ProvinceName string `json:"province_name,omitempty"`
}

// HasAncestors reports whether the snapshot carried any ancestor columns for u.
func (u Unit) HasAncestors() bool {
	return u.DistrictCode != "" || u.DistrictName != "" ||
		u.RegencyCode != "" || u.RegencyName != "" ||
		u.ProvinceCode != "" || u.ProvinceName != ""
}
