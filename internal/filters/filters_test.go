package filters

import (
	"net/url"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossy-radar/radar/internal/query"
)

func TestFromQueryDefaults(t *testing.T) {
	s := FromQuery(url.Values{})
	assert.True(t, s.Equal(Default()))
	assert.Empty(t, s.Query())
}

func TestFromQueryClamps(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		size     int
		industry []string
	}{
		{"page=0&size=0", 1, 20, nil},
		{"page=-3&size=abc", 1, 20, nil},
		{"page=4&size=500", 4, 100, nil},
		{"size=50&industry=半導體業&industry=&industry=半導體業&industry=電子零組件業", 1, 50, []string{"半導體業", "電子零組件業"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			s := FromQuery(v)
			assert.Equal(t, tt.page, s.Page)
			assert.Equal(t, tt.size, s.Size)
			assert.Equal(t, tt.industry, s.Industry)
		})
	}
}

func TestQueryRoundTrip(t *testing.T) {
	s := State{
		Page:       3,
		Size:       50,
		Sort:       "-capital",
		Name:       "台積",
		Industry:   []string{"半導體業"},
		MarketType: []string{"Listed", "OTC"},
	}
	q := s.Query()
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, []string{"Listed", "OTC"}, q["market_type"])

	if diff := cmp.Diff(s, FromQuery(q)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryOmitsDefaults(t *testing.T) {
	s := Default()
	s.Name = "  "
	s.Industry = []string{""}
	assert.Empty(t, s.Query())

	s.Size = 20
	s.Page = 1
	s.Sort = "name"
	assert.Equal(t, url.Values{"sort": {"name"}}, s.Query())
}

func TestParams(t *testing.T) {
	s := State{Page: 2, Size: 10, Sort: "-capital", Name: "積", MarketType: []string{"OTC"}}
	want := query.Params{Page: 2, Size: 10, Sort: []string{"-capital"}, Name: "積", MarketType: []string{"OTC"}}
	if diff := cmp.Diff(want, s.Params()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, Default().Params().Sort)
}

type recorder struct {
	mu    sync.Mutex
	calls []url.Values
}

func (r *recorder) Replace(q url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, q)
}

func (r *recorder) last() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func TestUpdateResetsPageOnFilterChange(t *testing.T) {
	nav := &recorder{}
	s := NewSync(url.Values{"page": {"5"}}, nav)

	got := s.Update(func(st *State) { st.Name = "台積" })
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, url.Values{"name": {"台積"}}, nav.last())

	got = s.Update(func(st *State) { st.Page = 3 })
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, "3", nav.last().Get("page"))

	for _, change := range []func(*State){
		func(st *State) { st.Sort = "-capital" },
		func(st *State) { st.Industry = []string{"半導體業"} },
		func(st *State) { st.MarketType = []string{"OTC"} },
	} {
		s.Update(func(st *State) { st.Page = 4 })
		got = s.Update(change)
		assert.Equal(t, 1, got.Page)
	}
}

func TestUpdateNoOpDoesNotNavigate(t *testing.T) {
	nav := &recorder{}
	s := NewSync(url.Values{"name": {"積"}}, nav)
	calls := 0
	s.OnChange(func(State) { calls++ })

	s.Update(func(st *State) { st.Name = " 積 " })
	assert.Empty(t, nav.calls)
	assert.Zero(t, calls)
}

func TestNavigateIsVerbatim(t *testing.T) {
	nav := &recorder{}
	s := NewSync(nil, nav)
	var seen []State
	cancel := s.OnChange(func(st State) { seen = append(seen, st) })

	s.Update(func(st *State) { st.Name = "台積" })
	// back button to a page of an earlier search
	got := s.Navigate(url.Values{"name": {"聯發"}, "page": {"2"}})
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, "聯發", got.Name)
	assert.Len(t, nav.calls, 1, "url-driven changes are not pushed back")
	require.Len(t, seen, 2)

	s.Navigate(url.Values{"name": {"聯發"}, "page": {"2"}, "size": {"20"}})
	assert.Len(t, seen, 2, "equivalent query does not notify")

	cancel()
	s.Navigate(url.Values{})
	assert.Len(t, seen, 2)
	assert.True(t, s.State().Equal(Default()))
}

func TestReset(t *testing.T) {
	s := NewSync(url.Values{"size": {"50"}, "name": {"積"}, "industry": {"半導體業"}, "page": {"3"}}, nil)
	got := s.Reset()
	assert.Equal(t, 50, got.Size)
	assert.Equal(t, 1, got.Page)
	assert.Empty(t, got.Name)
	assert.Equal(t, url.Values{"size": {"50"}}, s.Query())
}

func TestConcurrentUpdateAndNavigateStayInSync(t *testing.T) {
	nav := &recorder{}
	s := NewSync(nil, nav)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Update(func(st *State) { st.Name = "台積" })
		}()
		go func() {
			defer wg.Done()
			s.Navigate(url.Values{"name": {"聯發"}})
		}()
	}
	wg.Wait()

	st := s.State()
	assert.Contains(t, []string{"台積", "聯發"}, st.Name)
	if diff := cmp.Diff(st, FromQuery(s.Query())); diff != "" {
		t.Errorf("state diverged from url (-state +url):\n%s", diff)
	}
}

func TestSubscribersEndOnFinalState(t *testing.T) {
	s := NewSync(nil, nil)

	var (
		mu   sync.Mutex
		last State
		n    int
	)
	s.OnChange(func(st State) {
		mu.Lock()
		last = st
		n++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Update(func(st *State) { st.Page = i + 2 })
		}(i)
		go func() {
			defer wg.Done()
			s.Navigate(url.Values{"name": {"聯發"}, "page": {"7"}})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.NotZero(t, n)
	if diff := cmp.Diff(s.State(), last); diff != "" {
		t.Errorf("last delivered state is not the stored one (-stored +delivered):\n%s", diff)
	}
}

func TestUpdateFromSubscriber(t *testing.T) {
	nav := &recorder{}
	s := NewSync(nil, nav)

	var seen []string
	s.OnChange(func(st State) {
		seen = append(seen, st.Name)
		if st.Name == "台積" {
			s.Update(func(st *State) { st.Name = "台積電" })
		}
	})

	s.Update(func(st *State) { st.Name = "台積" })
	assert.Equal(t, "台積電", s.State().Name)
	assert.Equal(t, []string{"台積", "台積電"}, seen)
	assert.Equal(t, "台積電", nav.last().Get("name"))
}
