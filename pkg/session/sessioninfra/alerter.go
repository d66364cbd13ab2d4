package sessioninfra

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/asyncx"
	"github.com/Abraxas-365/fateweaver/pkg/logx"
	"github.com/Abraxas-365/fateweaver/pkg/notifx"
	"github.com/Abraxas-365/fateweaver/pkg/session"
)

const (
	budgetWarningTemplate   = "budget_warning"
	budgetExhaustedTemplate = "budget_exhausted"
)

const budgetWarningHTML = `
<h2>Token budget warning</h2>
<p>{{.Notice}}</p>
<p>Month {{.Month}}: {{.TotalTokens}} of {{.Limit}} tokens used.</p>
<p>The table keeps playing until the limit is reached.</p>`

const budgetExhaustedHTML = `
<h2>Token budget reached</h2>
<p>{{.Notice}}</p>
<p>Month {{.Month}}: {{.TotalTokens}} of {{.Limit}} tokens used.</p>
<p>Narration is paused until the month rolls over or the limit is raised.</p>`

// NotifxBudgetAlerter emails the game master on budget milestones. Each
// milestone goes out once per month so a busy table does not flood the
// inbox.
type NotifxBudgetAlerter struct {
	client *notifx.Client
	from   string
	to     string

	mu   sync.Mutex
	sent map[string]bool
}

func NewNotifxBudgetAlerter(client *notifx.Client, from, to string) (*NotifxBudgetAlerter, error) {
	if err := client.RegisterTemplate(budgetWarningTemplate, budgetWarningHTML); err != nil {
		return nil, err
	}
	if err := client.RegisterTemplate(budgetExhaustedTemplate, budgetExhaustedHTML); err != nil {
		return nil, err
	}
	return &NotifxBudgetAlerter{
		client: client,
		from:   from,
		to:     to,
		sent:   make(map[string]bool),
	}, nil
}

// BudgetWarning implements session.BudgetAlerter.
func (a *NotifxBudgetAlerter) BudgetWarning(report session.UsageReport, notice string) {
	a.send(budgetWarningTemplate, "Token budget warning for your table", report, notice)
}

// BudgetExhausted implements session.BudgetAlerter.
func (a *NotifxBudgetAlerter) BudgetExhausted(report session.UsageReport, notice string) {
	a.send(budgetExhaustedTemplate, "Token budget reached, narration paused", report, notice)
}

func (a *NotifxBudgetAlerter) send(tmpl, subject string, report session.UsageReport, notice string) {
	key := report.Month + ":" + tmpl
	a.mu.Lock()
	if a.sent[key] {
		a.mu.Unlock()
		return
	}
	a.sent[key] = true
	a.mu.Unlock()

	data := struct {
		Notice      string
		Month       string
		TotalTokens int
		Limit       int
	}{notice, report.Month, report.TotalTokens, report.Limit}

	msg := notifx.EmailMessage{
		From:     a.from,
		To:       []string{a.to},
		Subject:  subject,
		TextBody: notice,
	}

	// The send rides its own context; the request one is gone by the
	// time it lands.
	asyncx.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := a.client.SendTemplatedEmail(ctx, tmpl, data, msg); err != nil {
			logx.WithError(err).WithFields(logx.Fields{
				"template": tmpl,
				"month":    report.Month,
			}).Warn("budget alert email failed")
		}
	})
}
