package intake

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/steveyegge/pathway/internal/types"
)

// ErrAborted is returned when the user ends input before finishing.
var ErrAborted = errors.New("intake aborted")

// LineReader is the subset of *readline.Instance the questionnaire needs.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Questionnaire asks the intake questions one at a time, branching on the
// answers, and re-asks until each answer is well formed.
type Questionnaire struct {
	in  LineReader
	out io.Writer
}

// NewQuestionnaire creates a questionnaire reading from in and writing
// hints and errors to out.
func NewQuestionnaire(in LineReader, out io.Writer) *Questionnaire {
	return &Questionnaire{in: in, out: out}
}

// NewReadline returns a terminal line reader for the questionnaire.
func NewReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

// Run asks every applicable question and returns validated facts. If start
// is non-nil its values are offered as defaults.
func (q *Questionnaire) Run(start *types.CaseFacts) (types.CaseFacts, error) {
	var f types.CaseFacts
	if start != nil {
		f = *start
	}
	var err error

	if f.EntryDate, err = q.date("When did you enter the U.S.?", f.EntryDate, true); err != nil {
		return f, err
	}

	filed, err := q.yesNo("Have you filed your asylum application (I-589)?", f.Filed())
	if err != nil {
		return f, err
	}
	prevFiling := f.FilingDate
	f.FilingStatus = types.FilingNotFiled
	f.FilingDate = types.Date{}
	if filed {
		f.FilingStatus = types.FilingFiled
		if f.FilingDate, err = q.date("What date was it filed?", prevFiling, true); err != nil {
			return f, err
		}
	}

	inCourt, err := q.yesNo("Is your case in immigration court?", f.InCourt())
	if err != nil {
		return f, err
	}
	if inCourt {
		f.Forum = types.ForumCourt
		if f.CourtID, err = q.text("Which court?", f.CourtID); err != nil {
			return f, err
		}
		if f.NextHearingDate, err = q.date("When is your next hearing?", f.NextHearingDate, false); err != nil {
			return f, err
		}
		if f.MissedHearing, err = q.yesNo("Have you missed a hearing?", f.MissedHearing); err != nil {
			return f, err
		}
	} else {
		prevInterview := f.InterviewDate
		f.Forum = types.ForumNone
		f.CourtID = ""
		f.NextHearingDate = types.Date{}
		f.MissedHearing = false
		f.InterviewDate = types.Date{}
		if filed {
			f.Forum = types.ForumAgency
			if f.InterviewDate, err = q.date("When is your asylum interview? (leave blank if unknown)", prevInterview, false); err != nil {
				return f, err
			}
		}
	}

	if f.HasTPS, err = q.yesNo("Do you have Temporary Protected Status (TPS)?", f.HasTPS); err != nil {
		return f, err
	}
	if !f.HasTPS {
		f.TPSCountry, f.TPSExpirationDate = "", types.Date{}
	} else {
		if f.TPSCountry, err = q.text("For which country?", f.TPSCountry); err != nil {
			return f, err
		}
		if f.TPSExpirationDate, err = q.date("When does your TPS expire?", f.TPSExpirationDate, true); err != nil {
			return f, err
		}
	}

	if f.HasParole, err = q.yesNo("Were you paroled into the U.S.?", f.HasParole); err != nil {
		return f, err
	}
	if !f.HasParole {
		f.ParoleType, f.ParoleExpirationDate = "", types.Date{}
	} else {
		if f.ParoleType, err = q.text("What kind of parole? (e.g. humanitarian, CHNV)", f.ParoleType); err != nil {
			return f, err
		}
		if f.ParoleExpirationDate, err = q.date("When does your parole end?", f.ParoleExpirationDate, true); err != nil {
			return f, err
		}
	}

	if f.HasAttorney, err = q.yesNo("Do you have a lawyer or accredited representative?", f.HasAttorney); err != nil {
		return f, err
	}
	if f.HasWorkPermit, err = q.yesNo("Do you already have a work permit?", f.HasWorkPermit); err != nil {
		return f, err
	}

	outcome, err := q.choice("Has there been a decision on your case?", []string{"pending", "denied", "granted"}, outcomeChoice(f.Outcome))
	if err != nil {
		return f, err
	}
	switch outcome {
	case "denied":
		f.Outcome = types.OutcomeDenied
	case "granted":
		f.Outcome = types.OutcomeGranted
	default:
		f.Outcome = types.OutcomePending
	}
	prevAppeal := f.AppealNeeded
	f.AppealNeeded = false
	if f.Outcome == types.OutcomePending && !f.MissedHearing {
		f.DecisionDate = types.Date{}
	} else {
		if f.DecisionDate, err = q.date("What is the date of the decision or order?", f.DecisionDate, false); err != nil {
			return f, err
		}
	}
	if f.Outcome == types.OutcomeDenied && !f.InCourt() {
		if f.AppealNeeded, err = q.yesNo("Were you told to appeal?", prevAppeal); err != nil {
			return f, err
		}
	}

	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("invalid facts: %w", err)
	}
	return f, nil
}

func (q *Questionnaire) ask(question, def string) (string, error) {
	prompt := question + " "
	if def != "" {
		prompt += fmt.Sprintf("[%s] ", def)
	}
	q.in.SetPrompt(prompt)
	line, err := q.in.Readline()
	if err != nil {
		if err == io.EOF || err == readline.ErrInterrupt {
			return "", ErrAborted
		}
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (q *Questionnaire) complain(format string, args ...interface{}) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(q.out, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

func (q *Questionnaire) yesNo(question string, def bool) (bool, error) {
	d := "no"
	if def {
		d = "yes"
	}
	for {
		answer, err := q.ask(question+" (yes/no)", d)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		q.complain("Please answer yes or no.")
	}
}

func (q *Questionnaire) date(question string, def types.Date, required bool) (types.Date, error) {
	for {
		answer, err := q.ask(question+" (YYYY-MM-DD)", def.String())
		if err != nil {
			return types.Date{}, err
		}
		if strings.EqualFold(answer, "none") {
			answer = ""
		}
		d, err := types.ParseDate(answer)
		if err != nil {
			q.complain("%v", err)
			continue
		}
		if d.IsZero() && required {
			q.complain("This date is required.")
			continue
		}
		return d, nil
	}
}

func (q *Questionnaire) text(question, def string) (string, error) {
	return q.ask(question, def)
}

func (q *Questionnaire) choice(question string, options []string, def string) (string, error) {
	for {
		answer, err := q.ask(fmt.Sprintf("%s (%s)", question, strings.Join(options, "/")), def)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		for _, o := range options {
			if answer == o {
				return o, nil
			}
		}
		q.complain("Please choose one of: %s.", strings.Join(options, ", "))
	}
}

func outcomeChoice(o types.Outcome) string {
	switch o {
	case types.OutcomeDenied:
		return "denied"
	case types.OutcomeGranted:
		return "granted"
	}
	return "pending"
}
