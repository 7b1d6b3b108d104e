package srd

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/rs/zerolog/log"
)

// ReferenceDataSet maps a category name to its fetched records.
type ReferenceDataSet map[string][]Record

// Skill is one row of the skills table.
type Skill struct {
	Name        string
	Ability     model.Ability
	Description string
}

// Action is one row of the actions table. BaseDC carries either a flat DC or
// a per-difficulty mapping; both may be absent.
type Action struct {
	Name          string
	Ability       model.Ability
	Skill         string
	BaseDCFlat    *int
	BaseDCByLevel map[string]int
}

// DefaultCategories is the grounding fallback used when the registry or a
// selection cannot be resolved.
var DefaultCategories = []string{"skills", "ability-scores", "rule-sections"}

// defaultDCTable mirrors the fixed SRD ability-check table. It backs every
// difficulty lookup when the rules service is unreachable.
var defaultDCTable = map[string]int{
	"very_easy":         5,
	"easy":              10,
	"medium":            15,
	"hard":              20,
	"very_hard":         25,
	"nearly_impossible": 30,
}

const (
	minDC = 5
	maxDC = 30
)

// Cache lazily fetches and retains reference tables for one session.
// Population is idempotent: concurrent loads of the same category may fetch
// redundantly but never leave a category partially populated.
type Cache struct {
	client     *Client
	maxRecords int

	mu         sync.Mutex
	data       ReferenceDataSet
	skills     map[string]Skill
	actions    map[string]Action
	dcTable    map[string]int
	categories []string
}

// NewCache creates a cache backed by the given client. maxRecords bounds the
// per-category record count so grounding data stays small.
func NewCache(client *Client, maxRecords int) *Cache {
	if maxRecords <= 0 {
		maxRecords = 20
	}
	return &Cache{
		client:     client,
		maxRecords: maxRecords,
		data:       make(ReferenceDataSet),
	}
}

// Load returns the tables for the requested categories, fetching each
// category at most once per session. A category whose fetch fails yields an
// empty table for that category only; Load never aborts the whole set.
func (c *Cache) Load(ctx context.Context, categories []string) ReferenceDataSet {
	out := make(ReferenceDataSet, len(categories))
	for _, category := range categories {
		out[category] = c.loadCategory(ctx, category)
	}
	return out
}

func (c *Cache) loadCategory(ctx context.Context, category string) []Record {
	c.mu.Lock()
	if records, ok := c.data[category]; ok {
		c.mu.Unlock()
		return records
	}
	c.mu.Unlock()

	records, err := c.client.List(ctx, category)
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("srd: category fetch failed, using empty table")
		records = []Record{}
	}
	if len(records) > c.maxRecords {
		records = records[:c.maxRecords]
	}

	c.mu.Lock()
	c.data[category] = records
	c.mu.Unlock()
	return records
}

// Invalidate drops a cached category so the next Load re-fetches it.
func (c *Cache) Invalidate(category string) {
	c.mu.Lock()
	delete(c.data, category)
	c.mu.Unlock()
}

// SkillsTable returns the normalized skill index: canonical key form
// (underscores) mapped to skill name, governing ability, and description.
func (c *Cache) SkillsTable(ctx context.Context) map[string]Skill {
	c.mu.Lock()
	if c.skills != nil {
		table := c.skills
		c.mu.Unlock()
		return table
	}
	c.mu.Unlock()

	table := c.fetchSkills(ctx)

	c.mu.Lock()
	c.skills = table
	c.mu.Unlock()
	return table
}

func (c *Cache) fetchSkills(ctx context.Context) map[string]Skill {
	table := make(map[string]Skill)
	refs, err := c.client.List(ctx, "skills")
	if err != nil {
		log.Warn().Err(err).Msg("srd: skills fetch failed, using empty table")
		return table
	}

	for _, ref := range refs {
		rawIndex, _ := ref["index"].(string)
		if rawIndex == "" {
			continue
		}
		key := NormalizeIndex(rawIndex)

		detail, err := c.client.Detail(ctx, "skills", rawIndex)
		if err != nil {
			table[key] = Skill{Name: ref.Name(), Ability: model.AbilityStrength}
			continue
		}
		table[key] = skillFromDetail(detail, ref.Name())
	}
	return table
}

func skillFromDetail(detail Record, fallbackName string) Skill {
	name, _ := detail["name"].(string)
	if name == "" {
		name = fallbackName
	}

	ability := model.AbilityStrength
	if ref, ok := detail["ability_score"].(map[string]any); ok {
		if idx, ok := ref["index"].(string); ok {
			if parsed, ok := model.ParseAbility(expandAbility(idx)); ok {
				ability = parsed
			}
		}
	}

	return Skill{
		Name:        name,
		Ability:     ability,
		Description: extractDescription(detail["desc"]),
	}
}

// extractDescription flattens the service's description field, which may be
// a string or a list of paragraphs.
func extractDescription(desc any) string {
	switch v := desc.(type) {
	case string:
		return v
	case []any:
		if len(v) == 0 {
			return ""
		}
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return ""
}

// ActionsTable returns the intent lookup table built from the actions
// category. Services without an actions endpoint yield an empty table.
func (c *Cache) ActionsTable(ctx context.Context) map[string]Action {
	c.mu.Lock()
	if c.actions != nil {
		table := c.actions
		c.mu.Unlock()
		return table
	}
	c.mu.Unlock()

	table := make(map[string]Action)
	records, err := c.client.List(ctx, "actions")
	if err != nil {
		log.Debug().Err(err).Msg("srd: actions fetch failed, intent lookup disabled")
	}
	for _, rec := range records {
		key := rec.Index()
		if key == "" {
			continue
		}
		table[key] = actionFromRecord(rec)
	}

	c.mu.Lock()
	c.actions = table
	c.mu.Unlock()
	return table
}

func actionFromRecord(rec Record) Action {
	action := Action{Name: rec.Name(), Ability: model.AbilityStrength}

	switch ref := rec["ability_score"].(type) {
	case map[string]any:
		if idx, ok := ref["index"].(string); ok {
			if parsed, ok := model.ParseAbility(expandAbility(idx)); ok {
				action.Ability = parsed
			}
		}
	case string:
		if parsed, ok := model.ParseAbility(expandAbility(ref)); ok {
			action.Ability = parsed
		}
	}

	switch ref := rec["skill"].(type) {
	case map[string]any:
		if idx, ok := ref["index"].(string); ok {
			action.Skill = NormalizeIndex(idx)
		}
	case string:
		action.Skill = NormalizeIndex(ref)
	}

	switch dc := rec["base_dc"].(type) {
	case float64:
		flat := int(dc)
		action.BaseDCFlat = &flat
	case map[string]any:
		byLevel := make(map[string]int, len(dc))
		for level, value := range dc {
			if n, ok := value.(float64); ok {
				byLevel[NormalizeIndex(level)] = int(n)
			}
		}
		if len(byLevel) > 0 {
			action.BaseDCByLevel = byLevel
		}
	}
	return action
}

var dcRowPattern = regexp.MustCompile(`\| (Very easy|Easy|Medium|Hard|Very hard|Nearly impossible)\s+\| (\d+)\s+\|`)

// DifficultyTable returns the difficulty-name to DC mapping. The table is
// parsed from the ability-checks rule section; when the service is
// unavailable or the parse yields nothing, the fixed SRD table is used.
// Values are clamped to [5, 30].
func (c *Cache) DifficultyTable(ctx context.Context) map[string]int {
	c.mu.Lock()
	if c.dcTable != nil {
		table := c.dcTable
		c.mu.Unlock()
		return table
	}
	c.mu.Unlock()

	table := c.fetchDifficultyTable(ctx)

	c.mu.Lock()
	c.dcTable = table
	c.mu.Unlock()
	return table
}

func (c *Cache) fetchDifficultyTable(ctx context.Context) map[string]int {
	detail, err := c.client.Detail(ctx, "rule-sections", "ability-checks")
	if err != nil {
		log.Warn().Err(err).Msg("srd: difficulty table fetch failed, using built-in table")
		return copyDCTable(defaultDCTable)
	}

	desc, _ := detail["desc"].(string)
	matches := dcRowPattern.FindAllStringSubmatch(desc, -1)
	if len(matches) == 0 {
		return copyDCTable(defaultDCTable)
	}

	table := make(map[string]int, len(matches))
	for _, m := range matches {
		key := strings.ReplaceAll(strings.ToLower(m[1]), " ", "_")
		dc, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		table[key] = clampDC(dc)
	}
	return table
}

func copyDCTable(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func clampDC(dc int) int {
	if dc < minDC {
		return minDC
	}
	if dc > maxDC {
		return maxDC
	}
	return dc
}

// MediumDC returns the table's medium entry, the default difficulty class.
func (c *Cache) MediumDC(ctx context.Context) int {
	if dc, ok := c.DifficultyTable(ctx)[string(model.DifficultyMedium)]; ok {
		return dc
	}
	return defaultDCTable[string(model.DifficultyMedium)]
}

// Categories returns the category registry advertised by the service root,
// falling back to the default grounding set when the root is unreachable.
func (c *Cache) Categories(ctx context.Context) []string {
	c.mu.Lock()
	if c.categories != nil {
		cats := c.categories
		c.mu.Unlock()
		return cats
	}
	c.mu.Unlock()

	cats := c.fetchCategories(ctx)

	c.mu.Lock()
	c.categories = cats
	c.mu.Unlock()
	return cats
}

func (c *Cache) fetchCategories(ctx context.Context) []string {
	root, err := c.client.Root(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("srd: category registry fetch failed, using defaults")
		return append([]string(nil), DefaultCategories...)
	}

	cats := make([]string, 0, len(root))
	for key, path := range root {
		name := key
		if i := strings.LastIndex(path, "/"); i >= 0 && i+1 < len(path) {
			name = path[i+1:]
		}
		cats = append(cats, name)
	}
	if len(cats) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return cats
}
