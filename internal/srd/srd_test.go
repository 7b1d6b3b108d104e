package srd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/config"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2014", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"skills": "/api/2014/skills", "rule-sections": "/api/2014/rule-sections"}`))
	})
	mux.HandleFunc("/api/2014/skills", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"index": "stealth", "name": "Stealth"},
			{"index": "sleight-of-hand", "name": "Sleight of Hand"}
		]}`))
	})
	mux.HandleFunc("/api/2014/skills/stealth", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"index": "stealth", "name": "Stealth",
			"ability_score": {"index": "dex"},
			"desc": ["Make a Dexterity (Stealth) check when you attempt to conceal yourself."]}`))
	})
	mux.HandleFunc("/api/2014/skills/sleight-of-hand", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"index": "sleight-of-hand", "name": "Sleight of Hand",
			"ability_score": {"index": "dex"}, "desc": "Manual trickery."}`))
	})
	mux.HandleFunc("/api/2014/rule-sections/ability-checks", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"index": "ability-checks", "name": "Ability Checks",
			"desc": "| Task Difficulty | DC |\n| Very easy | 5 |\n| Easy | 10 |\n| Medium | 15 |\n| Hard | 20 |\n| Very hard | 25 |\n| Nearly impossible | 30 |"}`))
	})
	mux.HandleFunc("/api/2014/flat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"index": "one", "name": "One"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.SRDConfig{BaseURL: baseURL + "/api", Version: "2014", Timeout: 2 * time.Second})
}

func deadClient() *Client {
	return NewClient(config.SRDConfig{BaseURL: "http://127.0.0.1:1/api", Version: "2014", Timeout: 200 * time.Millisecond})
}

func TestNormalizeIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sleight_of_hand", NormalizeIndex("sleight-of-hand"))
	assert.Equal(t, "sleight_of_hand", NormalizeIndex("Sleight of Hand"))
	assert.Equal(t, "stealth", NormalizeIndex("  Stealth "))
}

func TestExpandAbility(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dexterity", expandAbility("dex"))
	assert.Equal(t, "dexterity", expandAbility("dexterity"))
	assert.Equal(t, "strength", expandAbility("???"))
}

func TestList_EnvelopeAndFlat(t *testing.T) {
	t.Parallel()

	client := newTestClient(testServer(t).URL)

	records, err := client.List(context.Background(), "skills")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "stealth", records[0].Index())

	flat, err := client.List(context.Background(), "flat")
	require.NoError(t, err)
	assert.Len(t, flat, 1)
}

func TestSkillsTable(t *testing.T) {
	t.Parallel()

	cache := NewCache(newTestClient(testServer(t).URL), 20)
	table := cache.SkillsTable(context.Background())

	require.Contains(t, table, "sleight_of_hand")
	assert.Equal(t, model.AbilityDexterity, table["sleight_of_hand"].Ability)
	assert.Equal(t, "Manual trickery.", table["sleight_of_hand"].Description)
	assert.Equal(t, model.AbilityDexterity, table["stealth"].Ability)
	assert.NotEmpty(t, table["stealth"].Description)
}

func TestDifficultyTable_ParsedAndOrdered(t *testing.T) {
	t.Parallel()

	cache := NewCache(newTestClient(testServer(t).URL), 20)
	table := cache.DifficultyTable(context.Background())

	prev := 0
	for _, level := range model.Difficulties() {
		dc, ok := table[string(level)]
		require.True(t, ok, "missing difficulty %s", level)
		assert.GreaterOrEqual(t, dc, 5)
		assert.LessOrEqual(t, dc, 30)
		assert.Greater(t, dc, prev, "table not increasing at %s", level)
		prev = dc
	}
}

func TestDifficultyTable_FallbackWhenUnavailable(t *testing.T) {
	t.Parallel()

	cache := NewCache(deadClient(), 20)
	table := cache.DifficultyTable(context.Background())

	assert.Equal(t, 15, table["medium"])
	assert.Equal(t, 15, cache.MediumDC(context.Background()))
	assert.Len(t, table, 6)
}

func TestLoad_FailedCategoryYieldsEmptyTable(t *testing.T) {
	t.Parallel()

	cache := NewCache(deadClient(), 20)
	data := cache.Load(context.Background(), []string{"skills", "spells"})

	require.Contains(t, data, "skills")
	require.Contains(t, data, "spells")
	assert.Empty(t, data["skills"])
	assert.Empty(t, data["spells"])
}

func TestLoad_CachesPerCategory(t *testing.T) {
	t.Parallel()

	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/2014/skills", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"results": [{"index": "stealth", "name": "Stealth"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cache := NewCache(newTestClient(server.URL), 20)
	cache.Load(context.Background(), []string{"skills"})
	cache.Load(context.Background(), []string{"skills"})
	assert.Equal(t, 1, hits)

	cache.Invalidate("skills")
	cache.Load(context.Background(), []string{"skills"})
	assert.Equal(t, 2, hits)
}

func TestLoad_BoundsRecordCount(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/2014/monsters", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"index": "a"}, {"index": "b"}, {"index": "c"}, {"index": "d"}
		]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cache := NewCache(newTestClient(server.URL), 2)
	data := cache.Load(context.Background(), []string{"monsters"})
	assert.Len(t, data["monsters"], 2)
}

func TestCategories_FromRootAndFallback(t *testing.T) {
	t.Parallel()

	cache := NewCache(newTestClient(testServer(t).URL), 20)
	categories := cache.Categories(context.Background())
	assert.ElementsMatch(t, []string{"skills", "rule-sections"}, categories)

	fallback := NewCache(deadClient(), 20).Categories(context.Background())
	assert.Equal(t, DefaultCategories, fallback)
}

func TestActionsTable_Shapes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/2014/actions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"index": "grapple", "name": "Grapple", "ability_score": "str", "skill": "athletics", "base_dc": 12},
			{"index": "pick-lock", "name": "Pick Lock", "ability_score": {"index": "dex"},
				"skill": {"index": "sleight-of-hand"}, "base_dc": {"easy": 10, "medium": 15}}
		]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cache := NewCache(newTestClient(server.URL), 20)
	table := cache.ActionsTable(context.Background())

	require.Contains(t, table, "grapple")
	grapple := table["grapple"]
	assert.Equal(t, model.AbilityStrength, grapple.Ability)
	assert.Equal(t, "athletics", grapple.Skill)
	require.NotNil(t, grapple.BaseDCFlat)
	assert.Equal(t, 12, *grapple.BaseDCFlat)

	require.Contains(t, table, "pick_lock")
	pick := table["pick_lock"]
	assert.Equal(t, model.AbilityDexterity, pick.Ability)
	assert.Equal(t, "sleight_of_hand", pick.Skill)
	assert.Equal(t, map[string]int{"easy": 10, "medium": 15}, pick.BaseDCByLevel)
}
