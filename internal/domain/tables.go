package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysOprLog{},
	// Storefront
	&Product{},
	&SiteSettingsRecord{},
	&Order{},
	&User{},
}
