package notion

import (
	"context"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
)

type fakeClient struct {
	// children maps blockID -> cursor -> one page of results.
	children map[string]map[string]*notionapi.GetChildrenResponse
	pages    []*notionapi.Page
	searches int
}

func (f *fakeClient) BlockChildren(_ context.Context, blockID, cursor string) (*notionapi.GetChildrenResponse, error) {
	byCursor, ok := f.children[blockID]
	if !ok {
		return &notionapi.GetChildrenResponse{}, nil
	}
	resp, ok := byCursor[cursor]
	if !ok {
		return &notionapi.GetChildrenResponse{}, nil
	}
	return resp, nil
}

func (f *fakeClient) SearchPages(_ context.Context, _ string) ([]*notionapi.Page, error) {
	f.searches++
	return f.pages, nil
}

func childPage(id, title string) *notionapi.ChildPageBlock {
	b := &notionapi.ChildPageBlock{
		BasicBlock: notionapi.BasicBlock{ID: notionapi.BlockID(id), Type: "child_page"},
	}
	b.ChildPage.Title = title
	return b
}

func heading(text string) *notionapi.Heading2Block {
	return &notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{Type: "heading_2"},
		Heading2:   notionapi.Heading{RichText: []notionapi.RichText{{PlainText: text}}},
	}
}

func paragraph(text string) *notionapi.ParagraphBlock {
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{Type: "paragraph"},
		Paragraph:  notionapi.Paragraph{RichText: []notionapi.RichText{{PlainText: text}}},
	}
}

func bullet(text string) *notionapi.BulletedListItemBlock {
	return &notionapi.BulletedListItemBlock{
		BasicBlock:       notionapi.BasicBlock{Type: "bulleted_list_item"},
		BulletedListItem: notionapi.ListItem{RichText: []notionapi.RichText{{PlainText: text}}},
	}
}

func TestListCampaigns_ChildPages(t *testing.T) {
	fake := &fakeClient{
		children: map[string]map[string]*notionapi.GetChildrenResponse{
			"parent": {"": {
				Results: notionapi.Blocks{
					childPage("c1", "Roofing Q3"),
					paragraph("not a campaign"),
					childPage("c2", ""),
				},
			}},
		},
	}

	campaigns, err := ListCampaigns(context.Background(), fake, "parent")
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(campaigns) != 2 {
		t.Fatalf("campaigns = %+v", campaigns)
	}
	if campaigns[0].ID != "c1" || campaigns[0].Title != "Roofing Q3" {
		t.Errorf("first campaign = %+v", campaigns[0])
	}
	if campaigns[1].Title != "Untitled" {
		t.Errorf("empty title not defaulted: %+v", campaigns[1])
	}
	if fake.searches != 0 {
		t.Error("search fallback used despite child pages")
	}
}

func TestListCampaigns_SearchFallback(t *testing.T) {
	page := &notionapi.Page{
		ID:     "p1",
		Parent: notionapi.Parent{PageID: "abc-123"},
		Properties: notionapi.Properties{
			"title": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: "Fall "}, {PlainText: "Push"}},
			},
		},
	}
	other := &notionapi.Page{ID: "p2", Parent: notionapi.Parent{PageID: "zzz"}}
	fake := &fakeClient{pages: []*notionapi.Page{page, other}}

	campaigns, err := ListCampaigns(context.Background(), fake, "abc123")
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("campaigns = %+v", campaigns)
	}
	if campaigns[0].ID != "p1" || campaigns[0].Title != "Fall Push" {
		t.Errorf("campaign = %+v", campaigns[0])
	}
}

func TestPageBlocks_Pagination(t *testing.T) {
	fake := &fakeClient{
		children: map[string]map[string]*notionapi.GetChildrenResponse{
			"page": {
				"": {
					Results:    notionapi.Blocks{paragraph("one")},
					HasMore:    true,
					NextCursor: "cur-1",
				},
				"cur-1": {
					Results: notionapi.Blocks{paragraph("two")},
				},
			},
		},
	}

	blocks, err := PageBlocks(context.Background(), fake, "page")
	if err != nil {
		t.Fatalf("PageBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks", len(blocks))
	}
}

func briefBlocks() notionapi.Blocks {
	link := &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{Type: "paragraph"},
		Paragraph: notionapi.Paragraph{RichText: []notionapi.RichText{
			{PlainText: "Summit Roofing", Href: "https://www.summitroofing.com/about"},
		}},
	}
	return notionapi.Blocks{
		heading("Ideal Customer Profile"),
		paragraph("Mid-market B2B SaaS companies doing outbound sales. SaaS only."),
		heading("Buyer Personas"),
		bullet("VP of Sales at a growth-stage startup"),
		bullet("Head of Revenue Operations"),
		heading("Company Characteristics"),
		paragraph("Series B, 50-200 employees, revenue automation stack."),
		heading("Value Proposition"),
		paragraph("Cut quoting time in half."),
		heading("Messaging Pillars"),
		paragraph("Speed. Accuracy."),
		heading("Target Companies"),
		paragraph("acme.io and parkexteriors.com are priority. Ignore hubspot.com and docs.google.com."),
		link,
	}
}

func TestParseBrief_Sections(t *testing.T) {
	brief := ParseBrief(briefBlocks())

	if brief.ICP == "" || brief.CompanyCharacteristics == "" {
		t.Fatalf("brief = %+v", brief)
	}
	if brief.ValueProposition != "Cut quoting time in half." {
		t.Errorf("value prop = %q", brief.ValueProposition)
	}
	if brief.MessagingPillars != "Speed. Accuracy." {
		t.Errorf("messaging = %q", brief.MessagingPillars)
	}
	if got := brief.Sections["Buyer Personas"]; got != "VP of Sales at a growth-stage startup\nHead of Revenue Operations" {
		t.Errorf("personas section = %q", got)
	}
}

func TestParseBrief_PersonasAndTitles(t *testing.T) {
	brief := ParseBrief(briefBlocks())

	if len(brief.Personas) != 2 {
		t.Fatalf("personas = %v", brief.Personas)
	}
	foundVP := false
	for _, title := range brief.TargetTitles {
		if title == "VP of Sales at a growth" {
			foundVP = true
		}
	}
	if !foundVP {
		t.Errorf("target titles = %v", brief.TargetTitles)
	}
}

func TestParseBrief_KeywordsDedupedAndSorted(t *testing.T) {
	brief := ParseBrief(briefBlocks())

	want := map[string]bool{"b2b": true, "saas": true, "outbound": true, "sales": true, "mid-market": true}
	seen := map[string]bool{}
	for i, kw := range brief.Keywords {
		if seen[kw] {
			t.Errorf("duplicate keyword %q", kw)
		}
		seen[kw] = true
		if i > 0 && brief.Keywords[i-1] > kw {
			t.Errorf("keywords not sorted: %v", brief.Keywords)
		}
	}
	for kw := range want {
		if !seen[kw] {
			t.Errorf("keyword %q missing from %v", kw, brief.Keywords)
		}
	}
}

func TestParseBrief_TargetDomains(t *testing.T) {
	brief := ParseBrief(briefBlocks())

	domains := map[string]bool{}
	for _, d := range brief.TargetDomains {
		domains[d] = true
	}
	for _, want := range []string{"acme.io", "parkexteriors.com", "summitroofing.com"} {
		if !domains[want] {
			t.Errorf("domain %q missing from %v", want, brief.TargetDomains)
		}
	}
	if domains["hubspot.com"] {
		t.Error("excluded tool domain survived")
	}
	if domains["docs.google.com"] {
		t.Error("tool subdomain survived")
	}
}

func TestBriefSummary(t *testing.T) {
	brief := &Brief{
		ICP:              "Roofing contractors",
		Personas:         []string{"Owner", "Ops lead"},
		ValueProposition: "Faster quotes",
	}
	summary := brief.Summary()
	for _, want := range []string{"ICP: Roofing contractors", "Personas: Owner; Ops lead", "Value proposition: Faster quotes"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %q", want, summary)
		}
	}
}
