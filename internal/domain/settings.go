package domain

import (
	"time"

	"github.com/mitchellh/mapstructure"
)

// Category groups products on the storefront. Categories live inside the
// settings aggregate, not in their own collection.
type Category struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Image string `json:"image" mapstructure:"image"`
}

// CampaignSettings holds the marketing-automation sub-settings nested in the
// site settings aggregate.
type CampaignSettings struct {
	WhatsappStatus      string `json:"whatsappStatus" mapstructure:"whatsappStatus"`
	WhatsappApiKey      string `json:"whatsappApiKey,omitempty" mapstructure:"whatsappApiKey"`
	WhatsappApiURL      string `json:"whatsappApiUrl,omitempty" mapstructure:"whatsappApiUrl"`
	BirthdayActive      bool   `json:"isActiveBirthday" mapstructure:"isActiveBirthday"`
	BirthdayPrompt      string `json:"birthdayPrompt" mapstructure:"birthdayPrompt"`
	BirthdayTemplate    string `json:"birthdayTemplate" mapstructure:"birthdayTemplate"`
	BirthdayImage       string `json:"birthdayImage" mapstructure:"birthdayImage"`
	InactiveActive      bool   `json:"isActiveInactive" mapstructure:"isActiveInactive"`
	InactiveDays        int    `json:"inactiveDays" mapstructure:"inactiveDays"`
	InactivePrompt      string `json:"inactivePrompt" mapstructure:"inactivePrompt"`
	InactiveTemplate    string `json:"inactiveTemplate" mapstructure:"inactiveTemplate"`
	InactiveImage       string `json:"inactiveImage" mapstructure:"inactiveImage"`
	MassActive          bool   `json:"isActiveMass" mapstructure:"isActiveMass"`
	MassMessageTemplate string `json:"massMessageTemplate" mapstructure:"massMessageTemplate"`
	MassMessageImage    string `json:"massMessageImage" mapstructure:"massMessageImage"`
}

// SiteSettings is the single global configuration aggregate. Exactly one
// logical instance exists; it is replaced wholesale by the back-office.
type SiteSettings struct {
	Version                int              `json:"version" mapstructure:"version"`
	BrandName              string           `json:"brandName" mapstructure:"brandName"`
	BrandLogoURL           string           `json:"brandLogoUrl" mapstructure:"brandLogoUrl"`
	FooterLogoURL          string           `json:"footerLogoUrl,omitempty" mapstructure:"footerLogoUrl"`
	FaviconURL             string           `json:"faviconUrl" mapstructure:"faviconUrl"`
	AppIconURL             string           `json:"appIconUrl" mapstructure:"appIconUrl"`
	AdminAppIconURL        string           `json:"adminAppIconUrl,omitempty" mapstructure:"adminAppIconUrl"`
	PrimaryColor           string           `json:"primaryColor" mapstructure:"primaryColor"`
	FooterBackgroundColor  string           `json:"footerBackgroundColor,omitempty" mapstructure:"footerBackgroundColor"`
	FooterTextColor        string           `json:"footerTextColor,omitempty" mapstructure:"footerTextColor"`
	ThemeMode              string           `json:"themeMode" mapstructure:"themeMode"`
	MinOrderValue          float64          `json:"minOrderValue" mapstructure:"minOrderValue"`
	ContactEmail           string           `json:"contactEmail" mapstructure:"contactEmail"`
	ContactWhatsapp        string           `json:"contactWhatsapp" mapstructure:"contactWhatsapp"`
	BillingOptions         []string         `json:"billingOptions" mapstructure:"billingOptions"`
	AllowCustomBillingTerm bool             `json:"allowCustomBillingTerm" mapstructure:"allowCustomBillingTerm"`
	BannerMode             string           `json:"bannerMode" mapstructure:"bannerMode"`
	BannerImageURL         string           `json:"bannerImageUrl" mapstructure:"bannerImageUrl"`
	BannerImages           []string         `json:"bannerImages" mapstructure:"bannerImages"`
	BannerVideoURL         string           `json:"bannerVideoUrl" mapstructure:"bannerVideoUrl"`
	BannerVideoFileURL     string           `json:"bannerVideoFileUrl,omitempty" mapstructure:"bannerVideoFileUrl"`
	FacebookURL            string           `json:"facebookUrl" mapstructure:"facebookUrl"`
	InstagramURL           string           `json:"instagramUrl" mapstructure:"instagramUrl"`
	LinkedinURL            string           `json:"linkedinUrl" mapstructure:"linkedinUrl"`
	HideOutOfStock         bool             `json:"hideOutOfStock" mapstructure:"hideOutOfStock"`
	Categories             []Category       `json:"categories" mapstructure:"categories"`
	FooterCopyright        string           `json:"footerCopyright" mapstructure:"footerCopyright"`
	FooterRestrictedText   string           `json:"footerRestrictedText" mapstructure:"footerRestrictedText"`
	PrivacyPolicyText      string           `json:"privacyPolicyText,omitempty" mapstructure:"privacyPolicyText"`
	CreatorName            string           `json:"creatorName,omitempty" mapstructure:"creatorName"`
	CreatorURL             string           `json:"creatorUrl,omitempty" mapstructure:"creatorUrl"`
	MetaTitle              string           `json:"metaTitle,omitempty" mapstructure:"metaTitle"`
	MetaDescription        string           `json:"metaDescription,omitempty" mapstructure:"metaDescription"`
	MetaImageURL           string           `json:"metaImageUrl,omitempty" mapstructure:"metaImageUrl"`
	EnableFreeShipping     bool             `json:"enableFreeShipping,omitempty" mapstructure:"enableFreeShipping"`
	FreeShippingLabel      string           `json:"freeShippingLabel,omitempty" mapstructure:"freeShippingLabel"`
	Campaigns              CampaignSettings `json:"campaigns,omitempty" mapstructure:"campaigns"`
}

// SiteSettingsRecord is the single remote row holding the settings aggregate.
const SiteSettingsRecordID int64 = 1

type SiteSettingsRecord struct {
	ID        int64        `json:"id,string"`
	Data      SiteSettings `gorm:"serializer:json" json:"data"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (SiteSettingsRecord) TableName() string {
	return "site_settings"
}

// DefaultSettings returns the built-in settings aggregate used before any
// administrator has saved one.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		Version:                1,
		BrandName:              "ORDERPORT",
		PrimaryColor:           "#059669",
		FooterBackgroundColor:  "#022c22",
		FooterTextColor:        "#ffffff",
		ThemeMode:              "light",
		MinOrderValue:          500.00,
		BillingOptions:         []string{"28 days", "35 days", "42 days"},
		AllowCustomBillingTerm: true,
		BannerMode:             "single",
		BannerImages:           []string{},
		HideOutOfStock:         true,
		Categories: []Category{
			{ID: "1", Name: "All", Image: ""},
		},
		FooterCopyright:      "© ORDERPORT - DIRECT INDUSTRY ORDERS",
		FooterRestrictedText: "PLATFORM RESTRICTED TO REGISTERED COMMERCIAL PARTNERS. ALL ORDERS ARE SUBJECT TO CREDIT APPROVAL.",
		EnableFreeShipping:   true,
		FreeShippingLabel:    "Free",
		Campaigns: CampaignSettings{
			WhatsappStatus: "disconnected",
			InactiveDays:   7,
		},
	}
}

// MergeSettings decodes a loose settings map over the defaults so absent keys
// keep their documented fallback values.
func MergeSettings(raw map[string]interface{}) (SiteSettings, error) {
	merged := DefaultSettings()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &merged,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return merged, err
	}
	if err := dec.Decode(raw); err != nil {
		return merged, err
	}
	return merged, nil
}
