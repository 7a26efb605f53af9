package notion

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Campaign is one campaign page under the campaigns parent page.
type Campaign struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Brief is a campaign brief parsed into prospecting inputs. Sections maps
// each heading to the text beneath it; the remaining fields are pulled
// from sections whose headings match known patterns.
type Brief struct {
	Sections               map[string]string `json:"sections"`
	ICP                    string            `json:"icp"`
	Personas               []string          `json:"personas"`
	CompanyCharacteristics string            `json:"company_characteristics"`
	ValueProposition       string            `json:"value_proposition"`
	MessagingPillars       string            `json:"messaging_pillars"`
	Keywords               []string          `json:"keywords"`
	TargetTitles           []string          `json:"target_titles"`
	TargetDomains          []string          `json:"target_domains"`
}

// Summary returns a compact text rendition of the brief for agent prompts.
func (b *Brief) Summary() string {
	var parts []string
	if b.ICP != "" {
		parts = append(parts, "ICP: "+b.ICP)
	}
	if len(b.Personas) > 0 {
		parts = append(parts, "Personas: "+strings.Join(b.Personas, "; "))
	}
	if b.CompanyCharacteristics != "" {
		parts = append(parts, "Company profile: "+b.CompanyCharacteristics)
	}
	if b.ValueProposition != "" {
		parts = append(parts, "Value proposition: "+b.ValueProposition)
	}
	return strings.Join(parts, "\n")
}

// ListCampaigns returns the campaign pages under the given parent page.
// Child pages come from the block children; when the parent has none (a
// linked database layout), a page search filtered by parent is the
// fallback.
func ListCampaigns(ctx context.Context, c Client, campaignsPageID string) ([]Campaign, error) {
	blocks, err := PageBlocks(ctx, c, campaignsPageID)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list campaigns")
	}

	var campaigns []Campaign
	for _, block := range blocks {
		child, ok := block.(*notionapi.ChildPageBlock)
		if !ok {
			continue
		}
		title := child.ChildPage.Title
		if title == "" {
			title = "Untitled"
		}
		campaigns = append(campaigns, Campaign{ID: string(child.ID), Title: title})
	}
	if len(campaigns) > 0 {
		return campaigns, nil
	}

	pages, err := c.SearchPages(ctx, "")
	if err != nil {
		return nil, eris.Wrap(err, "notion: search campaigns")
	}
	wantParent := normalizeID(campaignsPageID)
	for _, page := range pages {
		if normalizeID(string(page.Parent.PageID)) != wantParent {
			continue
		}
		campaigns = append(campaigns, Campaign{ID: string(page.ID), Title: pageTitle(page)})
	}
	return campaigns, nil
}

func normalizeID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

func pageTitle(page *notionapi.Page) string {
	prop, ok := page.Properties["title"]
	if !ok {
		return "Untitled"
	}
	tp, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return "Untitled"
	}
	var title string
	for _, rt := range tp.Title {
		title += rt.PlainText
	}
	if title == "" {
		return "Untitled"
	}
	return title
}

// PageBlocks fetches all child blocks of a page, following pagination.
func PageBlocks(ctx context.Context, c Client, pageID string) (notionapi.Blocks, error) {
	var all notionapi.Blocks
	cursor := ""
	for {
		resp, err := c.BlockChildren(ctx, pageID, cursor)
		if err != nil {
			return nil, eris.Wrap(err, "notion: page blocks")
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return all, nil
}

// GetCampaignBrief fetches a campaign page and parses it into a Brief.
func GetCampaignBrief(ctx context.Context, c Client, pageID string) (*Brief, error) {
	blocks, err := PageBlocks(ctx, c, pageID)
	if err != nil {
		return nil, eris.Wrap(err, "notion: get campaign brief")
	}
	return ParseBrief(blocks), nil
}

var (
	titleRe = regexp.MustCompile(`(?i)(?:VP|SVP|Head|Director|Chief|Manager|Lead|C[A-Z]O)\s*(?:of\s+)?[\w\s]+`)

	keywordRe = regexp.MustCompile(`(?i)\b(?:SaaS|B2B|enterprise|startup|mid-market|series [A-Z]|outbound|` +
		`sales|marketing|revenue|growth|automation|AI|machine learning|` +
		`fintech|healthtech|edtech|martech|security|cloud|data)\b`)

	domainRe = regexp.MustCompile(`\b([a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.(?:com|io|co|ai|net|org|dev|tech|app|software|cloud|so))\b`)
	hrefRe   = regexp.MustCompile(`https?://(?:www\.)?([^/\s?#]+)`)
)

// excludeDomains are tool and vendor domains that show up in briefs but
// are never prospecting targets.
var excludeDomains = map[string]bool{
	"example.com": true, "google.com": true, "notion.so": true,
	"notion.com": true, "slack.com": true, "github.com": true,
	"clay.com": true, "n8n.io": true, "supersend.io": true,
	"supersend.com": true, "zapier.com": true, "make.com": true,
	"airtable.com": true, "loom.com": true, "octavehq.com": true,
	"hubspot.com": true,
}

var toolRoots = []string{"google.com", "slack.com", "notion.so", "n8n.cloud", "clay.com"}

// ParseBrief walks a page's blocks and assembles the Brief: headings open
// sections, text blocks accumulate under the current section, and the
// typed fields are extracted from sections with recognizable headings.
func ParseBrief(blocks notionapi.Blocks) *Brief {
	brief := &Brief{Sections: map[string]string{}}

	var (
		currentSection string
		currentContent []string
	)
	closeSection := func() {
		if currentSection != "" {
			brief.Sections[currentSection] = strings.Join(currentContent, "\n")
		}
	}

	for _, block := range blocks {
		if heading, ok := headingText(block); ok {
			closeSection()
			currentSection = strings.TrimSpace(heading)
			currentContent = nil
			continue
		}
		if text := bodyText(block); text != "" && currentSection != "" {
			currentContent = append(currentContent, text)
		}
	}
	closeSection()

	for sectionName, content := range brief.Sections {
		upper := strings.ToUpper(sectionName)
		switch {
		case strings.Contains(upper, "ICP") || strings.Contains(upper, "IDEAL CUSTOMER"):
			brief.ICP = content
		case strings.Contains(upper, "PERSONA") || strings.Contains(upper, "BUYER"):
			for _, line := range strings.Split(content, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					brief.Personas = append(brief.Personas, line)
				}
			}
			for _, persona := range brief.Personas {
				for _, title := range titleRe.FindAllString(persona, -1) {
					brief.TargetTitles = append(brief.TargetTitles, strings.TrimSpace(title))
				}
			}
		case strings.Contains(upper, "COMPANY") &&
			(strings.Contains(upper, "CHARACTERISTIC") || strings.Contains(upper, "PROFILE")):
			brief.CompanyCharacteristics = content
		case strings.Contains(upper, "VALUE PROP"):
			brief.ValueProposition = content
		case strings.Contains(upper, "MESSAGING"):
			brief.MessagingPillars = content
		}
	}

	seen := map[string]bool{}
	for _, kw := range keywordRe.FindAllString(brief.ICP+" "+brief.CompanyCharacteristics, -1) {
		kw = strings.ToLower(kw)
		if !seen[kw] {
			seen[kw] = true
			brief.Keywords = append(brief.Keywords, kw)
		}
	}
	sort.Strings(brief.Keywords)

	brief.TargetDomains = extractDomains(brief.Sections, blocks)
	return brief
}

// extractDomains collects candidate company domains from section text and
// from hyperlinks, dropping known tooling domains.
func extractDomains(sections map[string]string, blocks notionapi.Blocks) []string {
	sectionNames := make([]string, 0, len(sections))
	for name := range sections {
		sectionNames = append(sectionNames, name)
	}
	sort.Strings(sectionNames)

	var allText strings.Builder
	for _, name := range sectionNames {
		allText.WriteString(sections[name])
		allText.WriteString("\n")
	}

	matches := domainRe.FindAllString(allText.String(), -1)

	for _, block := range blocks {
		for _, rt := range richText(block) {
			href := rt.Href
			if href == "" && rt.Text != nil && rt.Text.Link != nil {
				href = rt.Text.Link.Url
			}
			if href == "" {
				continue
			}
			if m := hrefRe.FindStringSubmatch(href); m != nil {
				matches = append(matches, m[1])
			}
		}
	}

	var domains []string
	seen := map[string]bool{}
outer:
	for _, d := range matches {
		d = strings.ToLower(strings.TrimSpace(d))
		if seen[d] || excludeDomains[d] {
			continue
		}
		for _, root := range toolRoots {
			if strings.HasSuffix(d, "."+root) {
				continue outer
			}
		}
		seen[d] = true
		domains = append(domains, d)
	}
	return domains
}

func headingText(block notionapi.Block) (string, bool) {
	switch b := block.(type) {
	case *notionapi.Heading1Block:
		return plainText(b.Heading1.RichText), true
	case *notionapi.Heading2Block:
		return plainText(b.Heading2.RichText), true
	case *notionapi.Heading3Block:
		return plainText(b.Heading3.RichText), true
	}
	return "", false
}

func bodyText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return plainText(b.Paragraph.RichText)
	case *notionapi.BulletedListItemBlock:
		return plainText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return plainText(b.NumberedListItem.RichText)
	case *notionapi.ToggleBlock:
		return plainText(b.Toggle.RichText)
	}
	return ""
}

// richText returns a block's rich text spans for link extraction; heading
// blocks count here too.
func richText(block notionapi.Block) []notionapi.RichText {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return b.Paragraph.RichText
	case *notionapi.BulletedListItemBlock:
		return b.BulletedListItem.RichText
	case *notionapi.NumberedListItemBlock:
		return b.NumberedListItem.RichText
	case *notionapi.Heading1Block:
		return b.Heading1.RichText
	case *notionapi.Heading2Block:
		return b.Heading2.RichText
	case *notionapi.Heading3Block:
		return b.Heading3.RichText
	}
	return nil
}

func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
