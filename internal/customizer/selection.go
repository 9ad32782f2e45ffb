package customizer

// Level is the tri-state of a garniture option
type Level string

const (
	LevelNon Level = "non"
	LevelOui Level = "oui"
	LevelX2  Level = "x2"
)

// NextGarnitureLevel cycles non -> oui -> x2 -> non. Unknown levels restart at oui.
func NextGarnitureLevel(level Level) Level {
	switch level {
	case LevelNon, "":
		return LevelOui
	case LevelOui:
		return LevelX2
	case LevelX2:
		return LevelNon
	default:
		return LevelOui
	}
}

// ClampSupplementQty applies delta to qty and clamps the result into [0, max]
func ClampSupplementQty(qty, delta, max int) int {
	next := qty + delta
	if next < 0 {
		return 0
	}
	if next > max {
		return max
	}
	return next
}

// Size is the size tier of a side dish priced with has_sizes
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// SideChoice is the single side dish of a session
type SideChoice struct {
	OptionID   string `json:"option_id"`
	Portion    string `json:"portion,omitempty"`
	Size       Size   `json:"size,omitempty"`
	SubSauceID string `json:"sub_sauce_id,omitempty"`
}

// Selection is the in-progress choice set of one customization session.
// It is owned by exactly one session and is never shared.
type Selection struct {
	BaseID         string           `json:"base_id,omitempty"`
	ViandeIDs      []string         `json:"viande_ids"`
	Garniture      map[string]Level `json:"garniture"`
	SauceIDs       []string         `json:"sauce_ids"`
	Accompagnement *SideChoice      `json:"accompagnement,omitempty"`
	Supplements    map[string]int   `json:"supplements"`
	BoissonID      string           `json:"boisson_id,omitempty"`
	DessertID      string           `json:"dessert_id,omitempty"`
	Quantity       int              `json:"quantity"`
}

// NewSelection returns an empty selection with quantity 1
func NewSelection() *Selection {
	return &Selection{
		ViandeIDs:   []string{},
		Garniture:   make(map[string]Level),
		SauceIDs:    []string{},
		Supplements: make(map[string]int),
		Quantity:    1,
	}
}

// Clone returns a deep copy
func (s *Selection) Clone() *Selection {
	c := &Selection{
		BaseID:      s.BaseID,
		ViandeIDs:   append([]string{}, s.ViandeIDs...),
		Garniture:   make(map[string]Level, len(s.Garniture)),
		SauceIDs:    append([]string{}, s.SauceIDs...),
		Supplements: make(map[string]int, len(s.Supplements)),
		BoissonID:   s.BoissonID,
		DessertID:   s.DessertID,
		Quantity:    s.Quantity,
	}
	for k, v := range s.Garniture {
		c.Garniture[k] = v
	}
	for k, v := range s.Supplements {
		c.Supplements[k] = v
	}
	if s.Accompagnement != nil {
		side := *s.Accompagnement
		c.Accompagnement = &side
	}
	return c
}

// GarnitureLevel returns the level of a garniture option, non when unset
func (s *Selection) GarnitureLevel(id string) Level {
	if level, ok := s.Garniture[id]; ok {
		return level
	}
	return LevelNon
}

// Has reports whether the step of the given kind holds a non-empty selection
func (s *Selection) Has(kind StepKind) bool {
	switch kind {
	case StepBase:
		return s.BaseID != ""
	case StepViande:
		return len(s.ViandeIDs) > 0
	case StepGarniture:
		for _, level := range s.Garniture {
			if level != LevelNon {
				return true
			}
		}
		return false
	case StepSauces:
		return len(s.SauceIDs) > 0
	case StepAccompagnement:
		return s.Accompagnement != nil
	case StepSupplements:
		for _, qty := range s.Supplements {
			if qty > 0 {
				return true
			}
		}
		return false
	case StepBoisson:
		return s.BoissonID != ""
	case StepDessert:
		return s.DessertID != ""
	}
	return false
}

// MeatCap returns the meat cap implied by the currently selected base
func (s *Selection) MeatCap(cfg *Configuration) int {
	if s.BaseID == "" {
		return 1
	}
	base, ok := cfg.Option(StepBase, s.BaseID)
	if !ok {
		return 1
	}
	return base.MeatCap()
}

// SelectBase sets the base and truncates meats to the new cap, keeping the
// first-chosen ones. Returns false for unknown ids.
func (s *Selection) SelectBase(cfg *Configuration, id string) bool {
	if _, ok := cfg.Option(StepBase, id); !ok {
		return false
	}
	s.BaseID = id
	if limit := s.MeatCap(cfg); len(s.ViandeIDs) > limit {
		s.ViandeIDs = s.ViandeIDs[:limit]
	}
	return true
}

// ClearBase removes the base. Meats are truncated to the single-meat cap.
func (s *Selection) ClearBase() {
	s.BaseID = ""
	if len(s.ViandeIDs) > 1 {
		s.ViandeIDs = s.ViandeIDs[:1]
	}
}

// ChooseViande applies a meat choice. With a cap of one the choice replaces the
// current meat, or clears it when it is the same. With a larger cap the choice
// toggles and additions beyond the cap are refused. Returns whether state changed.
func (s *Selection) ChooseViande(cfg *Configuration, id string) bool {
	if _, ok := cfg.Option(StepViande, id); !ok {
		return false
	}
	if idx := indexOf(s.ViandeIDs, id); idx >= 0 {
		s.ViandeIDs = removeAt(s.ViandeIDs, idx)
		return true
	}
	limit := s.MeatCap(cfg)
	if limit == 1 {
		s.ViandeIDs = []string{id}
		return true
	}
	if len(s.ViandeIDs) >= limit {
		return false
	}
	s.ViandeIDs = append(s.ViandeIDs, id)
	return true
}

// CycleGarniture advances one garniture option to its next level
func (s *Selection) CycleGarniture(cfg *Configuration, id string) (Level, bool) {
	if _, ok := cfg.Option(StepGarniture, id); !ok {
		return LevelNon, false
	}
	next := NextGarnitureLevel(s.GarnitureLevel(id))
	if next == LevelNon {
		delete(s.Garniture, id)
	} else {
		s.Garniture[id] = next
	}
	return next, true
}

// ToggleAllGarnitures sets every garniture to oui, or back to non when every
// garniture already is oui
func (s *Selection) ToggleAllGarnitures(cfg *Configuration) bool {
	step, ok := cfg.Step(StepGarniture)
	if !ok || len(step.Options) == 0 {
		return false
	}
	allOui := true
	for _, opt := range step.Options {
		if s.GarnitureLevel(opt.ID) != LevelOui {
			allOui = false
			break
		}
	}
	if allOui {
		s.Garniture = make(map[string]Level)
		return true
	}
	for _, opt := range step.Options {
		s.Garniture[opt.ID] = LevelOui
	}
	return true
}

// SauceCap returns the cap of the sauce step
func SauceCap(cfg *Configuration) int {
	step, ok := cfg.Step(StepSauces)
	if !ok {
		return DefaultMaxSauces
	}
	return step.Cap(DefaultMaxSauces)
}

// ToggleSauce removes a selected sauce or appends a new one. Additions beyond
// the cap are refused and never displace existing sauces.
func (s *Selection) ToggleSauce(cfg *Configuration, id string) bool {
	if _, ok := cfg.Option(StepSauces, id); !ok {
		return false
	}
	if idx := indexOf(s.SauceIDs, id); idx >= 0 {
		s.SauceIDs = removeAt(s.SauceIDs, idx)
		return true
	}
	if len(s.SauceIDs) >= SauceCap(cfg) {
		return false
	}
	s.SauceIDs = append(s.SauceIDs, id)
	return true
}

// SelectSide replaces the side dish wholesale. Choosing the selected side again
// clears the slot, including its portion and sub-sauce. Returns whether a side
// is selected afterwards.
func (s *Selection) SelectSide(cfg *Configuration, id string) bool {
	opt, ok := cfg.Option(StepAccompagnement, id)
	if !ok {
		return s.Accompagnement != nil
	}
	if s.Accompagnement != nil && s.Accompagnement.OptionID == id {
		s.Accompagnement = nil
		return false
	}
	side := &SideChoice{OptionID: id}
	if len(opt.PortionOptions) > 0 {
		side.Portion = opt.PortionOptions[0].ID
	}
	if opt.HasSizes {
		side.Size = defaultSize(opt)
	}
	s.Accompagnement = side
	return true
}

func defaultSize(opt *Option) Size {
	switch {
	case opt.PriceMedium != nil:
		return SizeMedium
	case opt.PriceSmall != nil:
		return SizeSmall
	case opt.PriceLarge != nil:
		return SizeLarge
	}
	return ""
}

// SetSidePortion picks a portion tier of the selected side
func (s *Selection) SetSidePortion(cfg *Configuration, portionID string) bool {
	opt, ok := s.sideOption(cfg)
	if !ok {
		return false
	}
	if _, ok := opt.Portion(portionID); !ok {
		return false
	}
	s.Accompagnement.Portion = portionID
	return true
}

// SetSideSize picks a size of the selected side
func (s *Selection) SetSideSize(cfg *Configuration, size Size) bool {
	opt, ok := s.sideOption(cfg)
	if !ok || !opt.HasSizes {
		return false
	}
	switch size {
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		return false
	}
	s.Accompagnement.Size = size
	return true
}

// SetSideSubSauce toggles the sub-sauce of the selected side, drawn from the
// sauce step options
func (s *Selection) SetSideSubSauce(cfg *Configuration, sauceID string) bool {
	opt, ok := s.sideOption(cfg)
	if !ok || !opt.HasSubSauce {
		return false
	}
	if _, ok := cfg.Option(StepSauces, sauceID); !ok {
		return false
	}
	if s.Accompagnement.SubSauceID == sauceID {
		s.Accompagnement.SubSauceID = ""
		return true
	}
	s.Accompagnement.SubSauceID = sauceID
	return true
}

func (s *Selection) sideOption(cfg *Configuration) (*Option, bool) {
	if s.Accompagnement == nil {
		return nil, false
	}
	return cfg.Option(StepAccompagnement, s.Accompagnement.OptionID)
}

// AdjustSupplement changes a supplement quantity by delta, clamped to
// [0, max_qty]. Returns the resulting quantity.
func (s *Selection) AdjustSupplement(cfg *Configuration, id string, delta int) int {
	opt, ok := cfg.Option(StepSupplements, id)
	if !ok {
		return s.Supplements[id]
	}
	qty := ClampSupplementQty(s.Supplements[id], delta, opt.SupplementCap())
	if qty == 0 {
		delete(s.Supplements, id)
	} else {
		s.Supplements[id] = qty
	}
	return qty
}

// ToggleBoisson selects the drink, or clears it when chosen again
func (s *Selection) ToggleBoisson(cfg *Configuration, id string) bool {
	return toggleSingle(cfg, StepBoisson, &s.BoissonID, id)
}

// ToggleDessert selects the dessert, or clears it when chosen again
func (s *Selection) ToggleDessert(cfg *Configuration, id string) bool {
	return toggleSingle(cfg, StepDessert, &s.DessertID, id)
}

func toggleSingle(cfg *Configuration, kind StepKind, slot *string, id string) bool {
	if _, ok := cfg.Option(kind, id); !ok {
		return *slot != ""
	}
	if *slot == id {
		*slot = ""
		return false
	}
	*slot = id
	return true
}

// SetQuantity sets the number of identical units to emit, at least one
func (s *Selection) SetQuantity(n int) {
	if n < 1 {
		n = 1
	}
	s.Quantity = n
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(ids []string, idx int) []string {
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:idx]...)
	return append(out, ids[idx+1:]...)
}
