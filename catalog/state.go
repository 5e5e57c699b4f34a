// Package catalog owns the evolving browse state over a loaded kit set:
// facet selection, sort, quiz and compare list.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"

	"github.com/routerhaus/kitfinder/facet"
	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/ranking"
	"github.com/routerhaus/kitfinder/scoring"
)

// SortPreferenceKey is the preference key holding the last used sort.
const SortPreferenceKey = "kits.sort"

// DefaultCompareLimit is the maximum size of the compare list.
const DefaultCompareLimit = 4

var (
	ErrCompareFull = errors.New("compare list is full")
	ErrUnknownKit  = errors.New("unknown kit")
)

// Preferences persists small string values across sessions. Get returns ""
// and no error for a missing key.
type Preferences interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Options configures a State. Zero values select the defaults.
type Options struct {
	Registry            *facet.Registry
	Preferences         Preferences
	CompareLimit        int
	RecommendationLimit int
	Logger              *slog.Logger
}

// State is the browse state over one copy of the catalog. Every mutating
// call refreshes the filtered list and facet counts before returning.
// A State is not safe for concurrent use.
type State struct {
	reg    *facet.Registry
	prefs  Preferences
	logger *slog.Logger

	compareLimit int
	recoLimit    int

	items    []models.Kit
	bySlug   map[string]int
	filtered []models.Kit
	counts   facet.Counts

	sel     facet.Selection
	sort    ranking.SortKey
	quiz    *models.QuizAnswer
	compare []string
}

// New builds a State over a private copy of items. The initial sort is the
// stored preference when one is set, otherwise relevance.
func New(items []models.Kit, opts Options) *State {
	s := &State{
		reg:          opts.Registry,
		prefs:        opts.Preferences,
		logger:       opts.Logger,
		compareLimit: opts.CompareLimit,
		recoLimit:    opts.RecommendationLimit,
		items:        slices.Clone(items),
		sel:          facet.NewSelection(),
		sort:         ranking.Relevance,
	}
	if s.reg == nil {
		s.reg = facet.Default
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.compareLimit <= 0 {
		s.compareLimit = DefaultCompareLimit
	}
	if s.recoLimit <= 0 {
		s.recoLimit = scoring.DefaultRecommendations
	}

	s.bySlug = make(map[string]int, len(s.items))
	for i, k := range s.items {
		if _, dup := s.bySlug[k.Slug]; !dup {
			s.bySlug[k.Slug] = i
		}
	}

	if key, ok := s.storedSort(); ok {
		s.sort = key
	}
	s.counts = s.reg.ComputeCounts(s.items)
	s.refresh()
	return s
}

// Restore applies a shared query. The sort comes from the query, then the
// stored preference, then relevance.
func (s *State) Restore(values url.Values) {
	key, ok, sel := DecodeQuery(values, s.reg)
	if !ok {
		if stored, found := s.storedSort(); found {
			key = stored
		}
	}
	s.sel = sel
	s.setSort(key)
	s.refresh()
}

// Refresh recomputes the filtered list. Facet counts always cover the full
// kit set so options never disappear while filtering.
func (s *State) Refresh() {
	s.refresh()
}

func (s *State) refresh() {
	s.filtered = ranking.Sort(s.reg.Apply(s.items, s.sel), s.sort)
}

// Toggle flips a facet value and reports whether it is now selected.
func (s *State) Toggle(key, value string) bool {
	on := s.sel.Toggle(key, value)
	s.refresh()
	return on
}

// Remove deselects a facet value, as an active chip does.
func (s *State) Remove(key, value string) {
	s.sel.Remove(key, value)
	s.refresh()
}

// SetSelection replaces the whole selection with a copy of sel.
func (s *State) SetSelection(sel facet.Selection) {
	s.sel = sel.Clone()
	s.refresh()
}

// Selection returns a copy of the current selection.
func (s *State) Selection() facet.Selection {
	return s.sel.Clone()
}

// SetSort changes the ordering and stores it as the preferred sort.
func (s *State) SetSort(key ranking.SortKey) {
	s.setSort(key)
	s.refresh()
}

// Sort returns the current sort key.
func (s *State) Sort() ranking.SortKey {
	return s.sort
}

func (s *State) setSort(key ranking.SortKey) {
	if _, ok := ranking.ParseSortKey(string(key)); !ok {
		key = ranking.Relevance
	}
	s.sort = key
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Set(SortPreferenceKey, string(key)); err != nil {
		s.logger.Warn("failed to store sort preference", slog.String("sort", string(key)), slog.Any("error", err))
	}
}

func (s *State) storedSort() (ranking.SortKey, bool) {
	if s.prefs == nil {
		return ranking.Relevance, false
	}
	raw, err := s.prefs.Get(SortPreferenceKey)
	if err != nil {
		s.logger.Warn("failed to read sort preference", slog.Any("error", err))
		return ranking.Relevance, false
	}
	return ranking.ParseSortKey(raw)
}

// ApplyQuizResult scores the full kit set against q and switches to
// relevance ordering. The answer replaces any earlier one.
func (s *State) ApplyQuizResult(q models.QuizAnswer) {
	s.quiz = &q
	scoring.Apply(s.items, q)
	s.setSort(ranking.Relevance)
	s.refresh()
}

// ClearQuiz drops the quiz answer and every score.
func (s *State) ClearQuiz() {
	s.quiz = nil
	scoring.Clear(s.items)
	s.refresh()
}

// Quiz returns the applied answer, if any.
func (s *State) Quiz() (models.QuizAnswer, bool) {
	if s.quiz == nil {
		return models.QuizAnswer{}, false
	}
	return *s.quiz, true
}

// Reset clears the selection, compare list and quiz and restores relevance.
func (s *State) Reset() {
	s.sel = facet.NewSelection()
	s.compare = nil
	s.quiz = nil
	scoring.Clear(s.items)
	s.setSort(ranking.Relevance)
	s.refresh()
}

// ToggleCompare adds or removes a kit from the compare list and reports
// whether it is now listed.
func (s *State) ToggleCompare(slug string) (bool, error) {
	if i := slices.Index(s.compare, slug); i >= 0 {
		s.compare = slices.Delete(s.compare, i, i+1)
		return false, nil
	}
	if _, ok := s.bySlug[slug]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKit, slug)
	}
	if len(s.compare) >= s.compareLimit {
		return false, fmt.Errorf("%w: up to %d kits", ErrCompareFull, s.compareLimit)
	}
	s.compare = append(s.compare, slug)
	return true, nil
}

// ClearCompare empties the compare list.
func (s *State) ClearCompare() {
	s.compare = nil
}

// CompareItems returns the compared kits in the order they were added.
func (s *State) CompareItems() []models.Kit {
	out := make([]models.Kit, 0, len(s.compare))
	for _, slug := range s.compare {
		if i, ok := s.bySlug[slug]; ok {
			out = append(out, s.items[i])
		}
	}
	return out
}

// Kit finds a kit by slug.
func (s *State) Kit(slug string) (models.Kit, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return models.Kit{}, false
	}
	return s.items[i], true
}

// Recommendations returns the best scored kits of the full set. It is empty
// until a quiz is applied.
func (s *State) Recommendations() []models.Kit {
	if s.quiz == nil {
		return nil
	}
	return scoring.Recommend(s.items, s.recoLimit)
}

// Items returns the full kit set with current scores.
func (s *State) Items() []models.Kit {
	return s.items
}

// Filtered returns the filtered and sorted kits.
func (s *State) Filtered() []models.Kit {
	return s.filtered
}

// MatchCount is the number of kits passing the selection.
func (s *State) MatchCount() int {
	return len(s.filtered)
}

// FacetCounts returns value counts over the full kit set.
func (s *State) FacetCounts() facet.Counts {
	return s.counts
}

// FilteredCounts returns value counts over the current result only.
func (s *State) FilteredCounts() facet.Counts {
	return s.reg.ComputeCounts(s.filtered)
}

// QuickChips returns the quick filter chips with their active state.
func (s *State) QuickChips() []facet.Chip {
	return s.reg.QuickChips(s.counts, s.sel)
}

// ActiveChips returns one removable chip per selected value.
func (s *State) ActiveChips() []facet.Chip {
	return s.reg.ActiveChips(s.sel)
}

// ActiveCount is the number of selected facet values.
func (s *State) ActiveCount() int {
	return s.sel.Len()
}

// Registry returns the facet registry in use.
func (s *State) Registry() *facet.Registry {
	return s.reg
}

// Query encodes the sort and selection for a shareable link.
func (s *State) Query() url.Values {
	return EncodeQuery(s.sort, s.sel)
}
