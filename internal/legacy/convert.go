package legacy

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/usf-territorio/territorio-backend/pkg/db/models"
	"github.com/usf-territorio/territorio-backend/pkg/enums"
	"github.com/usf-territorio/territorio-backend/pkg/types"
)

// ToModels migrates doc in place and converts it into models. Records that
// cannot be represented are skipped; the returned error combines one entry per
// skipped record, so callers may keep the valid records and still report it.
func ToModels(doc *Document) ([]models.Condominium, []models.Agent, error) {
	Migrate(doc)

	var errs error
	conds := make([]models.Condominium, 0, len(doc.Condominiums))
	for _, c := range doc.Condominiums {
		cond, err := condominiumToModel(c)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		conds = append(conds, cond)
	}

	agents := make([]models.Agent, 0, len(doc.Agents))
	for _, a := range doc.Agents {
		agent, err := agentToModel(a)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		agents = append(agents, agent)
	}
	return conds, agents, errs
}

func condominiumToModel(c Condominium) (models.Condominium, error) {
	switch {
	case c.ID <= 0:
		return models.Condominium{}, fmt.Errorf("condominium %q: invalid id %d", c.Name, c.ID)
	case strings.TrimSpace(c.Name) == "":
		return models.Condominium{}, fmt.Errorf("condominium %d: name is required", c.ID)
	case strings.TrimSpace(c.Team) == "":
		return models.Condominium{}, fmt.Errorf("condominium %d: team is required", c.ID)
	case c.Towers <= 0:
		return models.Condominium{}, fmt.Errorf("condominium %d: invalid tower count %d", c.ID, c.Towers)
	}

	priority, err := enums.ParsePriority(strings.ToLower(strings.TrimSpace(c.Priority)))
	if err != nil {
		priority = enums.PriorityMedium
	}
	status, err := enums.ParseCoverageStatus(strings.TrimSpace(c.CoverageStatus))
	if err != nil {
		status = enums.CoverageStatusForPercent(int(c.Coverage))
	}

	cond := models.Condominium{
		ID:                uint(c.ID),
		TeamID:            strings.TrimSpace(c.Team),
		Name:              strings.TrimSpace(c.Name),
		BlockCount:        int(c.Towers),
		CoveredBlocks:     int(c.CoveredBlocks),
		UncoveredBlocks:   int(c.UncoveredBlocks),
		CoveragePercent:   int(c.Coverage),
		CoverageStatus:    status,
		PrimaryAgentName:  c.PrimaryAgent,
		PrimaryBlockRange: c.ActiveBlocks,
		Apartments:        int(c.Apartments),
		Residents:         int(c.Residents),
		Hypertensive:      int(c.Hypertensive),
		Diabetic:          int(c.Diabetic),
		Pregnant:          int(c.Pregnant),
		Priority:          priority,
		LastVisit:         parseDate(c.LastVisit),
	}
	if c.Assignments != nil {
		for _, a := range *c.Assignments {
			name := strings.TrimSpace(a.Name)
			if name == "" {
				continue
			}
			start := parseDate(a.StartDate)
			if start == nil {
				start = parseDate(DefaultStartDate)
			}
			cond.Assignments = append(cond.Assignments, models.Assignment{
				CondominiumID: cond.ID,
				Position:      len(cond.Assignments),
				AgentName:     name,
				BlockRange:    a.Blocks,
				StartDate:     *start,
			})
		}
	}
	return cond, nil
}

func agentToModel(a Agent) (models.Agent, error) {
	name := strings.TrimSpace(a.Name)
	team := strings.TrimSpace(a.Team)
	if name == "" {
		return models.Agent{}, fmt.Errorf("agent %d: name is required", a.ID)
	}
	if team == "" {
		return models.Agent{}, fmt.Errorf("agent %q: team is required", name)
	}
	ids := types.IDSet{}
	for _, id := range a.Condominiums {
		if id > 0 {
			ids = ids.Add(uint(id))
		}
	}
	agent := models.Agent{
		TeamID:         team,
		Name:           name,
		CondominiumIDs: ids,
		BlockRange:     a.ActiveBlocks,
	}
	if a.ID > 0 {
		agent.ID = uint(a.ID)
	}
	return agent, nil
}

// FromModels renders models back into the document shape, keeping both the
// multi-agent list and the single-agent mirrors.
func FromModels(conds []models.Condominium, agents []models.Agent) *Document {
	doc := &Document{
		Condominiums: make([]Condominium, 0, len(conds)),
		Agents:       make([]Agent, 0, len(agents)),
	}
	for _, c := range conds {
		assignments := make([]Assignment, 0, len(c.Assignments))
		for _, a := range c.Assignments {
			assignments = append(assignments, Assignment{
				Name:      a.AgentName,
				Blocks:    a.BlockRange,
				StartDate: a.StartDate.Format(dateLayout),
			})
		}
		entry := Condominium{
			ID:              Int(c.ID),
			Name:            c.Name,
			Team:            c.TeamID,
			Towers:          Int(c.BlockCount),
			Apartments:      Int(c.Apartments),
			Residents:       Int(c.Residents),
			Hypertensive:    Int(c.Hypertensive),
			Diabetic:        Int(c.Diabetic),
			Pregnant:        Int(c.Pregnant),
			Coverage:        Int(c.CoveragePercent),
			Priority:        c.Priority.String(),
			CoveredBlocks:   Int(c.CoveredBlocks),
			UncoveredBlocks: Int(c.UncoveredBlocks),
			CoverageStatus:  c.CoverageStatus.LegacyLabel(),
			PrimaryAgent:    c.PrimaryAgentName,
			ActiveBlocks:    c.PrimaryBlockRange,
			Assignments:     &assignments,
		}
		if c.LastVisit != nil {
			entry.LastVisit = c.LastVisit.Format(dateLayout)
		}
		doc.Condominiums = append(doc.Condominiums, entry)
	}
	for _, a := range agents {
		ids := make([]Int, 0, len(a.CondominiumIDs))
		for _, id := range a.CondominiumIDs {
			ids = append(ids, Int(id))
		}
		doc.Agents = append(doc.Agents, Agent{
			ID:           Int(a.ID),
			Name:         a.Name,
			Team:         a.TeamID,
			Condominiums: ids,
			ActiveBlocks: a.BlockRange,
		})
	}
	return doc
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
