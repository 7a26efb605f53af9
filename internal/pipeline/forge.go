package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/coldcall-cli/internal/model"
	"github.com/sells-group/coldcall-cli/pkg/octave"
)

// Forge session statuses, one per completed stage.
const (
	StatusDomainsReady      = "domains_ready"
	StatusCompaniesReady    = "companies_ready"
	StatusCompaniesEnriched = "companies_enriched"
	StatusPeopleReady       = "people_ready"
)

// ForgeStartRequest seeds a prospecting run with a campaign and its
// discovered domains.
type ForgeStartRequest struct {
	CampaignID   string
	CampaignName string
	PlaybookID   string
	BriefSummary string
	Domains      []string
}

// ForgeStart creates a stage-1 prospecting session from the discovered
// domain list. Domains are lowercased and deduplicated, keeping first
// occurrence order.
func (p *Pipeline) ForgeStart(req ForgeStartRequest) (*model.ForgeSession, error) {
	seen := make(map[string]bool, len(req.Domains))
	var domains []string
	for _, d := range req.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}
	if len(domains) == 0 {
		return nil, eris.New("pipeline: no domains to prospect")
	}

	sess := &model.ForgeSession{
		ID:                newSessionID(),
		CampaignID:        req.CampaignID,
		CampaignName:      req.CampaignName,
		PlaybookID:        req.PlaybookID,
		BriefSummary:      req.BriefSummary,
		Stage:             1,
		Status:            StatusDomainsReady,
		DiscoveredDomains: domains,
		CreatedAt:         p.now().UTC().Format(time.RFC3339),
	}
	if err := p.store.SaveForge(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Prospect runs stage 2: qualify every discovered domain in parallel and
// keep the US-based results. Individual failures never abort the stage;
// the failed domain is reported and the rest continue.
func (p *Pipeline) Prospect(ctx context.Context, sessionID string, emit Emitter) (*model.ForgeSession, error) {
	sess, err := p.store.LoadForge(sessionID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}

	domains := sess.DiscoveredDomains
	results := make([]*model.ForgeCompany, len(domains))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ProspectWorkers)
	for i, domain := range domains {
		i, domain := i, domain
		g.Go(func() error {
			qual, err := p.octave.QualifyCompany(gctx, domain)

			mu.Lock()
			defer mu.Unlock()
			done++
			switch {
			case err != nil:
				emit.emit(EventErrorContact, map[string]any{"domain": domain, "error": err.Error()})
			case qual == nil:
				emit.emit(EventSkip, map[string]any{"domain": domain, "reason": "not_found"})
			case !isUSCountry(qual.CountryCode):
				emit.emit(EventSkip, map[string]any{"domain": domain, "reason": "non_us"})
			default:
				company := forgeCompany(domain, qual, p.cfg.QualThreshold)
				results[i] = company
				emit.emit(EventCompanyFound, map[string]any{
					"name":      company.Name,
					"domain":    company.Domain,
					"score":     company.Score,
					"qualified": company.Qualified,
					"current":   done,
					"total":     len(domains),
				})
			}
			return nil
		})
	}
	g.Wait()

	sess.Companies = sess.Companies[:0]
	qualified := 0
	for _, c := range results {
		if c == nil {
			continue
		}
		sess.Companies = append(sess.Companies, *c)
		if c.Qualified {
			qualified++
		}
	}

	sess.Stage = 2
	sess.Status = StatusCompaniesReady
	if err := p.store.SaveForge(sess); err != nil {
		emit.emit(EventWarn, map[string]any{"message": "session save failed: " + err.Error()})
	}
	emit.emit(EventProspectComplete, map[string]any{
		"session_id": sess.ID,
		"companies":  len(sess.Companies),
		"qualified":  qualified,
	})
	return sess, nil
}

// forgeCompany maps a qualification result onto the session record.
func forgeCompany(domain string, q *octave.CompanyQualification, threshold float64) *model.ForgeCompany {
	return &model.ForgeCompany{
		Name:        q.Name,
		Domain:      domain,
		Country:     q.CountryCode,
		Industry:    q.Industry,
		Employees:   q.EmployeeCount,
		Location:    q.Locality,
		Description: truncate(q.Description, 200),
		Score:       q.Score,
		Reasoning:   q.Rationale,
		Qualified:   q.Score >= threshold,
		USBased:     isUSCountry(q.CountryCode),
		Product:     q.Product,
		Segment:     q.Segment,
		Playbook:    q.Playbook,
	}
}

// EnrichCompanies runs stage 3: deep enrichment of the approved
// companies. A company whose enrichment fails stays in the stage output
// with the failure recorded, so the operator still sees it.
func (p *Pipeline) EnrichCompanies(ctx context.Context, sessionID string, emit Emitter) (*model.ForgeSession, error) {
	sess, err := p.store.LoadForge(sessionID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}

	approved := stringSet(sess.ApprovedCompanyDomains)
	var targets []model.ForgeCompany
	for _, c := range sess.Companies {
		if approved[c.Domain] {
			targets = append(targets, c)
		}
	}

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EnrichWorkers)
	for i := range targets {
		i := i
		g.Go(func() error {
			c := &targets[i]
			enr, err := p.octave.EnrichCompany(gctx, c.Domain)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				c.EnrichmentSummary = "Enrichment failed: " + err.Error()
				emit.emit(EventErrorContact, map[string]any{"domain": c.Domain, "error": err.Error()})
				return nil
			}
			c.EnrichmentSummary = truncate(enr.Summary, 300)
			c.TalkingPoints = enr.TalkingPoints
			c.TechStack = enr.TechStack
			c.RecentNews = enr.RecentNews
			emit.emit(EventCompanyEnriched, map[string]any{
				"name":    c.Name,
				"domain":  c.Domain,
				"current": done,
				"total":   len(targets),
			})
			return nil
		})
	}
	g.Wait()

	sess.EnrichedCompanies = targets
	sess.Stage = 3
	sess.Status = StatusCompaniesEnriched
	if err := p.store.SaveForge(sess); err != nil {
		emit.emit(EventWarn, map[string]any{"message": "session save failed: " + err.Error()})
	}
	emit.emit(EventEnrichCompaniesComplete, map[string]any{
		"session_id": sess.ID,
		"companies":  len(sess.EnrichedCompanies),
	})
	return sess, nil
}

// DiscoverEnrichPeople runs stage 4 in two phases: discover people at the
// approved enriched companies, filter to US-based, then enrich each one.
// A person whose enrichment fails keeps their discovery record with the
// failure noted.
func (p *Pipeline) DiscoverEnrichPeople(ctx context.Context, sessionID string, emit Emitter) (*model.ForgeSession, error) {
	sess, err := p.store.LoadForge(sessionID)
	if err != nil {
		emit.emit(EventError, map[string]any{"message": err.Error()})
		return nil, err
	}

	approved := stringSet(sess.ApprovedEnrichedDomains)
	var companies []model.ForgeCompany
	for _, c := range sess.EnrichedCompanies {
		if approved[c.Domain] {
			companies = append(companies, c)
		}
	}

	found := make([][]model.ForgePerson, len(companies))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ProspectWorkers)
	for i := range companies {
		i := i
		g.Go(func() error {
			c := companies[i]
			people, err := p.octave.ProspectPeople(gctx, c.Domain)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				emit.emit(EventErrorContact, map[string]any{"domain": c.Domain, "error": err.Error()})
				return nil
			}
			for _, person := range people {
				if !isUSPerson(person) {
					continue
				}
				found[i] = append(found[i], model.ForgePerson{
					Name:      person.FullName(),
					FirstName: person.FirstName,
					LastName:  person.LastName,
					Email:     person.Email,
					Title:     person.Title,
					Company:   c.Name,
					Domain:    c.Domain,
					LinkedIn:  person.LinkedIn,
					Location:  person.LocationText,
				})
			}
			emit.emit(EventStatus, map[string]any{
				"message": "Found " + strconv.Itoa(len(found[i])) + " people at " + c.Name,
			})
			return nil
		})
	}
	g.Wait()

	sess.People = sess.People[:0]
	for _, group := range found {
		sess.People = append(sess.People, group...)
	}

	enriched := make([]model.ForgePerson, len(sess.People))
	copy(enriched, sess.People)
	done := 0

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EnrichWorkers)
	for i := range enriched {
		i := i
		g.Go(func() error {
			person := &enriched[i]
			enr, err := p.octave.EnrichPerson(gctx, octave.PersonInput{
				FirstName:       person.FirstName,
				LastName:        person.LastName,
				Email:           person.Email,
				CompanyDomain:   person.Domain,
				JobTitle:        person.Title,
				LinkedInProfile: person.LinkedIn,
			})

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				person.EnrichmentSummary = "Enrichment failed: " + err.Error()
				emit.emit(EventErrorContact, map[string]any{"name": person.Name, "error": err.Error()})
				return nil
			}
			person.EnrichmentSummary = enr.Summary
			person.TalkingPoints = enr.TalkingPoints
			emit.emit(EventPersonEnriched, map[string]any{
				"name":     person.Name,
				"company":  person.Company,
				"progress": strconv.Itoa(done) + "/" + strconv.Itoa(len(enriched)),
			})
			return nil
		})
	}
	g.Wait()

	sess.EnrichedPeople = enriched
	sess.Stage = 4
	sess.Status = StatusPeopleReady
	if err := p.store.SaveForge(sess); err != nil {
		emit.emit(EventWarn, map[string]any{"message": "session save failed: " + err.Error()})
	}
	emit.emit(EventPeopleComplete, map[string]any{
		"session_id": sess.ID,
		"people":     len(sess.EnrichedPeople),
	})
	return sess, nil
}

// ApproveStage records the operator's approved items for a stage and
// advances the session. Stage 2 approves company domains, stage 3
// approves enriched company domains, stage 4 approves people by email.
func (p *Pipeline) ApproveStage(sessionID string, stage int, approved []string) (*model.ForgeSession, error) {
	sess, err := p.store.LoadForge(sessionID)
	if err != nil {
		return nil, err
	}
	switch stage {
	case 2:
		sess.ApprovedCompanyDomains = approved
	case 3:
		sess.ApprovedEnrichedDomains = approved
	case 4:
		sess.ApprovedPeople = approved
	default:
		return nil, eris.Errorf("pipeline: no approval for stage %d", stage)
	}
	sess.Stage = stage + 1
	if err := p.store.SaveForge(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// isUSPerson applies the people filter: an explicit country decides,
// otherwise the free-form location, otherwise the person passes.
func isUSPerson(p octave.Person) bool {
	if strings.TrimSpace(p.CountryCode) != "" {
		return isUSCountry(p.CountryCode)
	}
	if strings.TrimSpace(p.LocationText) != "" {
		return isUSLocation(p.LocationText)
	}
	return true
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// truncate caps a string at n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
