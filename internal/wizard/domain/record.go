package domain

// ProjectRecord is the aggregate collected by the wizard. Every section is a
// value, so the aggregate is always fully present even when fields are unset.
type ProjectRecord struct {
	ProjectInfo     ProjectInfo     `json:"projectInfo"`
	Property        Property        `json:"property"`
	Compliance      Compliance      `json:"compliance"`
	TokenAllocation TokenAllocation `json:"tokenAllocation"`
	Distribution    Distribution    `json:"distribution"`
	Jurisdiction    Jurisdiction    `json:"jurisdiction"`
}

type ProjectInfo struct {
	ProjectName       string  `json:"projectName"`
	ProjectGoal       string  `json:"projectGoal"`
	AssetClass        string  `json:"assetClass"`
	TargetRaiseAmount float64 `json:"targetRaiseAmount"`
	Description       string  `json:"description"`
	Website           string  `json:"website"`
}

// Property is the asset record shared by the asset and tokenomics steps.
// AnnualYield is a pointer so that an explicit 0 can be told apart from unset.
type Property struct {
	Title     string `json:"title"`
	AssetType string `json:"asset_type"`
	Category  string `json:"category"`

	Country  string `json:"country"`
	City     string `json:"city"`
	Address  string `json:"address"`
	Location string `json:"location"`

	ConstructionYear int    `json:"construction_year"`
	AcquisitionDate  string `json:"acquisition_date"`
	TokenizationDate string `json:"tokenization_date"`
	ExitDate         string `json:"exit_date"`

	TotalAreaSqm float64 `json:"total_area_sqm"`
	Units        int     `json:"units"`
	Floors       int     `json:"floors"`

	TotalValue       float64  `json:"total_value"`
	OccupancyRate    float64  `json:"occupancy_rate"`
	AppreciationRate float64  `json:"appreciation_rate"`
	LeverageRatio    float64  `json:"leverage_ratio"`
	TokenPrice       float64  `json:"token_price"`
	TotalTokens      float64  `json:"total_tokens"`
	SoftCap          float64  `json:"soft_cap"`
	HardCap          float64  `json:"hard_cap"`
	AnnualYield      *float64 `json:"annual_yield"`
	LockupMonths     int      `json:"lockup_months"`
	PlatformFee      float64  `json:"platform_fee"`
	ManagementFee    float64  `json:"management_fee"`

	ImageURL    string   `json:"image_url"`
	GalleryURLs []string `json:"gallery_urls"`
	VideoURL    string   `json:"video_url"`

	BusinessPlan string `json:"business_plan"`
}

type Compliance struct {
	KYCProvider           string   `json:"kycProvider"`
	RegFramework          string   `json:"regFramework"`
	AccreditationRequired bool     `json:"accreditationRequired"`
	AMLCheck              bool     `json:"amlCheck"`
	BlockedCountries      []string `json:"blockedCountries"`
}

// TokenAllocation splits the token supply in percent.
type TokenAllocation struct {
	Founders  float64 `json:"founders"`
	Investors float64 `json:"investors"`
	Treasury  float64 `json:"treasury"`
	Advisors  float64 `json:"advisors"`
}

type Distribution struct {
	TargetInvestorType string   `json:"targetInvestorType"`
	MinInvestment      float64  `json:"minInvestment"`
	MaxInvestment      float64  `json:"maxInvestment"`
	MarketingChannels  []string `json:"marketingChannels"`
}

type Jurisdiction struct {
	Country    string `json:"country"`
	Region     string `json:"region"`
	SPVType    string `json:"spvType"`
	EntityName string `json:"entityName"`
}

const (
	DefaultAssetClass   = "Real Estate"
	DefaultInvestorType = "Retail"
)

// NewProjectRecord returns the aggregate a fresh wizard session starts from.
func NewProjectRecord() ProjectRecord {
	return ProjectRecord{
		ProjectInfo: ProjectInfo{
			AssetClass: DefaultAssetClass,
		},
		Property: Property{
			Category:    DefaultAssetClass,
			GalleryURLs: []string{},
		},
		Compliance: Compliance{
			BlockedCountries: []string{},
		},
		TokenAllocation: TokenAllocation{
			Founders:  20,
			Investors: 70,
			Treasury:  5,
			Advisors:  5,
		},
		Distribution: Distribution{
			TargetInvestorType: DefaultInvestorType,
			MarketingChannels:  []string{},
		},
	}
}
