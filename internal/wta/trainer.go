package wta

// Trainer threads the rule's State through successive invocations and
// collects the history.
type Trainer struct {
	rule    Rule
	env     Env
	state   State
	history *History
}

func NewTrainer(rule Rule, env Env) (*Trainer, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{
		rule:    rule,
		env:     env,
		state:   NewState(env.Weights()),
		history: NewHistory(),
	}, nil
}

// Invoke runs one step at time now. It has the signature of an engine
// operation callback.
func (t *Trainer) Invoke(now float64) error {
	next, rec, err := t.rule.Step(t.state, t.env, now)
	if err != nil {
		return err
	}
	t.state = next
	t.history.Append(rec)
	return nil
}

func (t *Trainer) State() State      { return t.state }
func (t *Trainer) History() *History { return t.history }
func (t *Trainer) Window() float64   { return t.rule.Window }
