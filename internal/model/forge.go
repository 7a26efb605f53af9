package model

// ForgeCompany is a discovered company moving through the prospecting stages.
type ForgeCompany struct {
	Name        string  `json:"name"`
	Domain      string  `json:"domain"`
	Country     string  `json:"country"`
	Industry    string  `json:"industry"`
	Employees   string  `json:"employees"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Reasoning   string  `json:"reasoning"`
	Qualified   bool    `json:"qualified"`
	USBased     bool    `json:"us_based"`
	Product     string  `json:"product,omitempty"`
	Segment     string  `json:"segment,omitempty"`
	Playbook    string  `json:"playbook,omitempty"`

	// Populated by the enrichment stage.
	EnrichmentSummary string   `json:"enrichment_summary,omitempty"`
	TalkingPoints     []string `json:"talking_points,omitempty"`
	TechStack         []string `json:"tech_stack,omitempty"`
	RecentNews        []string `json:"recent_news,omitempty"`
}

// ForgePerson is a prospect discovered at a qualified company.
type ForgePerson struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Domain    string `json:"domain"`
	LinkedIn  string `json:"linkedin"`
	Location  string `json:"location"`

	EnrichmentSummary string   `json:"enrichment_summary,omitempty"`
	TalkingPoints     []string `json:"talking_points,omitempty"`
}

// ForgeSession tracks a prospecting run through its four stages:
// 1 domains injected, 2 companies qualified, 3 companies enriched,
// 4 people discovered and enriched.
type ForgeSession struct {
	ID                string   `json:"session_id"`
	CampaignID        string   `json:"campaign_id"`
	CampaignName      string   `json:"campaign_name"`
	PlaybookID        string   `json:"playbook_id"`
	Stage             int      `json:"stage"`
	Status            string   `json:"status"`
	BriefSummary      string   `json:"brief_summary,omitempty"`
	DiscoveredDomains []string `json:"discovered_domains"`

	Companies         []ForgeCompany `json:"companies"`
	EnrichedCompanies []ForgeCompany `json:"enriched_companies"`
	People            []ForgePerson  `json:"people"`
	EnrichedPeople    []ForgePerson  `json:"enriched_people"`

	ApprovedCompanyDomains  []string `json:"approved_company_domains,omitempty"`
	ApprovedEnrichedDomains []string `json:"approved_enriched_domains,omitempty"`
	ApprovedPeople          []string `json:"approved_people,omitempty"`

	CreatedAt string `json:"created_at"`
}

// ForgeSummary is the listing row for recoverable forge sessions.
type ForgeSummary struct {
	SessionID               string `json:"session_id"`
	CampaignID              string `json:"campaign_id"`
	CampaignName            string `json:"campaign_name"`
	Stage                   int    `json:"stage"`
	Status                  string `json:"status"`
	DiscoveredDomainsCount  int    `json:"discovered_domains_count"`
	CompaniesCount          int    `json:"companies_count"`
	QualifiedCompaniesCount int    `json:"qualified_companies_count"`
	PeopleCount             int    `json:"people_count"`
	Modified                string `json:"modified"`
}
