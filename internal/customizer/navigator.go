package customizer

import "github.com/shopspring/decimal"

// EffectiveSteps returns the ordered steps that apply to a product type, in
// configuration order. The recap step is not returned: the cursor standing one
// past the last step is the recap.
func EffectiveSteps(cfg *Configuration, productType ProductType) []Step {
	var out []Step
	for _, step := range cfg.Steps {
		if !applies(cfg, productType, step.ID) {
			continue
		}
		s := step
		if productType == ProductSide && s.ID == StepAccompagnement {
			s.Required = true
		}
		out = append(out, s)
	}
	return out
}

func applies(cfg *Configuration, productType ProductType, kind StepKind) bool {
	switch kind {
	case StepRecap:
		return false
	case StepBoisson:
		if productType.Bundled() {
			return true
		}
		return cfg.EnableBoissonUpsell && upsellable(productType)
	case StepDessert:
		if productType.Bundled() {
			return true
		}
		return cfg.EnableDessertUpsell && upsellable(productType)
	case StepBase, StepViande, StepGarniture, StepSauces, StepSupplements:
		return productType.Composite()
	case StepAccompagnement:
		return productType.Composite() || productType == ProductSide
	}
	return false
}

func upsellable(productType ProductType) bool {
	return productType != ProductDrink && productType != ProductDessert
}

// Session walks one product through its effective steps. It owns its Selection
// exclusively; callers route every mutation through it so the cursor and the
// completion predicate stay consistent. A Session is not safe for concurrent use.
type Session struct {
	cfg     *Configuration
	item    Item
	steps   []Step
	sel     *Selection
	cursor  int
	reached int
}

// NewSession starts a customization of item against cfg
func NewSession(cfg *Configuration, item Item) *Session {
	return &Session{
		cfg:   cfg,
		item:  item,
		steps: EffectiveSteps(cfg, item.Type),
		sel:   NewSelection(),
	}
}

// Configuration returns the configuration the session runs against
func (s *Session) Configuration() *Configuration { return s.cfg }

// Item returns the product being customized
func (s *Session) Item() Item { return s.item }

// Steps returns the effective steps of the session
func (s *Session) Steps() []Step { return s.steps }

// Selection returns a copy of the current selection
func (s *Session) Selection() *Selection { return s.sel.Clone() }

// Cursor returns the index of the active step; len(Steps()) means recap
func (s *Session) Cursor() int { return s.cursor }

// ActiveStep returns the step under the cursor, false at recap
func (s *Session) ActiveStep() (Step, bool) {
	if s.cursor >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[s.cursor], true
}

// AtRecap reports whether every step has been walked through
func (s *Session) AtRecap() bool {
	return s.cursor >= len(s.steps)
}

// Choose applies an option of the active step. On a single step a choice that
// leaves the option selected advances the cursor; re-choosing a toggle-capable
// option deselects it and stays. Returns whether the selection changed.
func (s *Session) Choose(optionID string) bool {
	step, ok := s.ActiveStep()
	if !ok {
		return false
	}
	changed, advance := rules[step.ID].choose(s.cfg, s.sel, optionID)
	if advance && step.Type == StepSingle {
		s.advance()
	}
	return changed
}

// Continue advances past the active step. It is refused on a required step
// that holds no selection.
func (s *Session) Continue() bool {
	step, ok := s.ActiveStep()
	if !ok {
		return false
	}
	if step.Required && !s.sel.Has(step.ID) {
		return false
	}
	s.advance()
	return true
}

// Skip advances past an optional step without touching its selection
func (s *Session) Skip() bool {
	step, ok := s.ActiveStep()
	if !ok || step.Required {
		return false
	}
	s.advance()
	return true
}

func (s *Session) advance() {
	s.cursor++
	if s.cursor > s.reached {
		s.reached = s.cursor
	}
}

// GoBack moves the cursor one step back. Selections are kept.
func (s *Session) GoBack() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// GoToStep jumps to a step already reached, typically from the recap, without
// resetting later selections. Like Continue, it never lands past a required
// step that holds no selection.
func (s *Session) GoToStep(index int) bool {
	if index < 0 || index > len(s.steps) || index > s.reached {
		return false
	}
	for _, step := range s.steps[:index] {
		if step.Required && !s.sel.Has(step.ID) {
			return false
		}
	}
	s.cursor = index
	return true
}

// StepComplete reports whether a step counts as done: a required step needs a
// selection, an optional one is done once selected or passed
func (s *Session) StepComplete(index int) bool {
	if index < 0 || index >= len(s.steps) || index > s.reached {
		return false
	}
	step := s.steps[index]
	if s.sel.Has(step.ID) {
		return true
	}
	return !step.Required && index < s.reached
}

// CanConfirm is the completion predicate gating add-to-cart
func (s *Session) CanConfirm() bool {
	return len(s.RemainingRequired()) == 0
}

// RemainingRequired lists required steps that still hold no selection
func (s *Session) RemainingRequired() []StepKind {
	var remaining []StepKind
	for _, step := range s.steps {
		if step.Required && !s.sel.Has(step.ID) {
			remaining = append(remaining, step.ID)
		}
	}
	return remaining
}

// Price returns the current unit price
func (s *Session) Price() decimal.Decimal {
	return ComputePrice(s.cfg, s.item, s.sel)
}

// Breakdown returns the current per-step price decomposition
func (s *Session) Breakdown() PriceBreakdown {
	return Breakdown(s.cfg, s.item, s.sel)
}

// onStep reports whether the cursor stands on a step of the given kind.
// Step-specific shortcuts only apply there.
func (s *Session) onStep(kind StepKind) bool {
	step, ok := s.ActiveStep()
	return ok && step.ID == kind
}

// ToggleAllGarnitures is the "complete" shortcut of the garniture step
func (s *Session) ToggleAllGarnitures() bool {
	if !s.onStep(StepGarniture) {
		return false
	}
	return s.sel.ToggleAllGarnitures(s.cfg)
}

// AdjustSupplement changes a supplement quantity by delta and returns the
// resulting quantity. Outside the supplements step nothing changes.
func (s *Session) AdjustSupplement(optionID string, delta int) int {
	if !s.onStep(StepSupplements) {
		return s.sel.Supplements[optionID]
	}
	return s.sel.AdjustSupplement(s.cfg, optionID, delta)
}

// SetSidePortion picks the portion of the selected side dish
func (s *Session) SetSidePortion(portionID string) bool {
	if !s.onStep(StepAccompagnement) {
		return false
	}
	return s.sel.SetSidePortion(s.cfg, portionID)
}

// SetSideSize picks the size of the selected side dish
func (s *Session) SetSideSize(size Size) bool {
	if !s.onStep(StepAccompagnement) {
		return false
	}
	return s.sel.SetSideSize(s.cfg, size)
}

// SetSideSubSauce toggles the sub-sauce of the selected side dish
func (s *Session) SetSideSubSauce(sauceID string) bool {
	if !s.onStep(StepAccompagnement) {
		return false
	}
	return s.sel.SetSideSubSauce(s.cfg, sauceID)
}

// SetQuantity sets how many identical units confirm emits
func (s *Session) SetQuantity(n int) {
	s.sel.SetQuantity(n)
}

// Reset discards the selection and returns to the first step
func (s *Session) Reset() {
	s.sel = NewSelection()
	s.cursor = 0
	s.reached = 0
}

// Lines synthesizes the cart line items without touching the session. It
// returns false while required steps are missing.
func (s *Session) Lines(tr Translator) ([]CartLineItem, bool) {
	if !s.CanConfirm() {
		return nil, false
	}
	return Synthesize(s.cfg, s.item, s.sel, s.sel.Quantity, tr), true
}

// Confirm synthesizes the cart line items and resets the session. It returns
// false, and leaves the session untouched, while required steps are missing.
func (s *Session) Confirm(tr Translator) ([]CartLineItem, bool) {
	items, ok := s.Lines(tr)
	if !ok {
		return nil, false
	}
	s.Reset()
	return items, true
}
