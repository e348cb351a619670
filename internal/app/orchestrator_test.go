package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-links/internal/config"
	"job-links/internal/fetcher"
	"job-links/internal/observability"
	"job-links/internal/storage/files"
)

type fakeFetcher struct {
	pages     map[string]string
	failOn    string
	requested []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetcher.FetchResponse, error) {
	f.requested = append(f.requested, url)
	if url == f.failOn {
		return nil, errors.New("boom")
	}
	return &fetcher.FetchResponse{StatusCode: 200, Body: []byte(f.pages[url]), URL: url}, nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Pages = 2
	cfg.Keywords = []string{"python", "data"}
	cfg.HTTP.DelayMS = 0
	cfg.Output.Dir = filepath.Join(t.TempDir(), "links")
	return cfg
}

var runDay = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func TestRunMergesPagesAndSaves(t *testing.T) {
	cfg := testConfig(t)
	f := &fakeFetcher{pages: map[string]string{
		"https://czyjesteldorado.pl/search?q=&page=0": `
			<a href="https://czyjesteldorado.pl/praca/1-python-dev">a</a>
			<a href="https://czyjesteldorado.pl/praca/2-java-dev">b</a>`,
		"https://czyjesteldorado.pl/search?q=&page=1": `
			<a href="https://czyjesteldorado.pl/praca/1-python-dev">a</a>
			<a href="https://czyjesteldorado.pl/praca/3-Data-Engineer">c</a>`,
	}}
	store := files.NewRepository(cfg.Output.Dir, cfg.Output.Basename, observability.NewNop())

	orch := NewOrchestrator(cfg, observability.NewNop(), f, store).WithClock(func() time.Time { return runDay })
	results, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	want := []string{
		"https://czyjesteldorado.pl/praca/1-python-dev",
		"https://czyjesteldorado.pl/praca/3-Data-Engineer",
	}
	assert.Equal(t, []string{
		"https://czyjesteldorado.pl/search?q=&page=0",
		"https://czyjesteldorado.pl/search?q=&page=1",
	}, f.requested)
	assert.Equal(t, want, results[0].Links)
	assert.Equal(t, want, results[0].New)

	daily, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "job_links_eldorado_2024-03-05.txt"))
	require.NoError(t, err)
	assert.Equal(t, want[0]+"\n"+want[1]+"\n", string(daily))

	master, err := os.ReadFile(results[0].MasterPath)
	require.NoError(t, err)
	assert.Equal(t, want[0]+";2024-03-05\n"+want[1]+";2024-03-05\n", string(master))
}

func TestRunSecondDayOnlyNewLinks(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pages = 1
	page := "https://czyjesteldorado.pl/search?q=&page=0"
	f := &fakeFetcher{pages: map[string]string{
		page: `<a href="https://czyjesteldorado.pl/praca/1-python-dev">a</a>`,
	}}
	store := files.NewRepository(cfg.Output.Dir, cfg.Output.Basename, observability.NewNop())

	_, err := NewOrchestrator(cfg, observability.NewNop(), f, store).
		WithClock(func() time.Time { return runDay }).
		Run(context.Background())
	require.NoError(t, err)

	f.pages[page] += `<a href="https://czyjesteldorado.pl/praca/4-data-scientist">d</a>`
	results, err := NewOrchestrator(cfg, observability.NewNop(), f, store).
		WithClock(func() time.Time { return runDay.AddDate(0, 0, 1) }).
		Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, results[0].Links, 2)
	assert.Equal(t, []string{"https://czyjesteldorado.pl/praca/4-data-scientist"}, results[0].New)
}

func TestRunAbortsWithoutSavingOnFetchError(t *testing.T) {
	cfg := testConfig(t)
	f := &fakeFetcher{
		pages: map[string]string{
			"https://czyjesteldorado.pl/search?q=&page=0": `<a href="https://czyjesteldorado.pl/praca/1-python-dev">a</a>`,
		},
		failOn: "https://czyjesteldorado.pl/search?q=&page=1",
	}
	store := files.NewRepository(cfg.Output.Dir, cfg.Output.Basename, observability.NewNop())

	results, err := NewOrchestrator(cfg, observability.NewNop(), f, store).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, results)
	assert.NoDirExists(t, cfg.Output.Dir)
}

func TestRunVisitsSitesInOrder(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pages = 1
	cfg.Sites = []config.Site{config.SitePracuj, config.SiteEldorado}
	f := &fakeFetcher{pages: map[string]string{
		"https://www.pracuj.pl/praca?pn=1": `<a href="https://www.pracuj.pl/praca/python-developer-krakow,oferta,1001">p</a>`,
	}}
	store := files.NewRepository(cfg.Output.Dir, cfg.Output.Basename, observability.NewNop())

	results, err := NewOrchestrator(cfg, observability.NewNop(), f, store).
		WithClock(func() time.Time { return runDay }).
		Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{
		"https://www.pracuj.pl/praca?pn=1",
		"https://czyjesteldorado.pl/search?q=&page=0",
	}, f.requested)
	assert.Equal(t, config.SitePracuj, results[0].Site)
	assert.Equal(t, []string{"https://www.pracuj.pl/praca/python-developer-krakow,oferta,1001"}, results[0].New)
	assert.Empty(t, results[1].New)
	assert.FileExists(t, results[1].DailyPath)
}
