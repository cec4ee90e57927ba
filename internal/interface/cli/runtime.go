package cli

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/mirrordesk/mirrordesk/internal/app/config"
	"github.com/mirrordesk/mirrordesk/internal/application/cache"
	"github.com/mirrordesk/mirrordesk/internal/application/pipeline"
	"github.com/mirrordesk/mirrordesk/internal/application/push"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/contact"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/deal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/journal"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/stage"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
	infraConfig "github.com/mirrordesk/mirrordesk/internal/infra/config"
	"github.com/mirrordesk/mirrordesk/internal/infrastructure/remote/httprecord"
	"github.com/mirrordesk/mirrordesk/internal/infrastructure/remote/memrecord"
)

// runtime wires the board, remote services, and caches one command
// invocation works against.
type runtime struct {
	cfg      config.Config
	board    *stage.Board
	engine   *pipeline.Engine
	contacts *cache.Cache[*contact.Contact]
	journals *cache.Cache[*journal.Entry]
	hub      *push.InvalidationHub
}

func newRuntime(cfg config.Config) (*runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	board, err := infraConfig.LoadStages(afero.NewOsFs(), cfg.StageFile())
	if err != nil {
		return nil, err
	}

	var dealSvc remote.DealService
	var contactSvc remote.RecordService[*contact.Contact]
	var journalSvc remote.RecordService[*journal.Entry]
	if cfg.UseMemory() {
		dealSvc, contactSvc, journalSvc = memoryBackend(board)
	} else {
		opts := []httprecord.Option{httprecord.WithTimeout(cfg.RequestTimeout())}
		dealSvc = httprecord.NewDealClient(cfg.ServerBaseURL(), opts...)
		contactSvc = httprecord.NewClient[*contact.Contact](cfg.ServerBaseURL(), "contacts", opts...)
		journalSvc = httprecord.NewClient[*journal.Entry](cfg.ServerBaseURL(), "journal-entries", opts...)
	}

	hub := push.NewInvalidationHub()
	return &runtime{
		cfg:      cfg,
		board:    board,
		engine:   pipeline.NewEngine(board, dealSvc, cache.WithInvalidator[*deal.Deal](hub)),
		contacts: cache.New[*contact.Contact]("contacts", contactSvc, cache.WithInvalidator[*contact.Contact](hub)),
		journals: cache.New[*journal.Entry]("journal-entries", journalSvc, cache.WithInvalidator[*journal.Entry](hub)),
		hub:      hub,
	}, nil
}

// memoryBackend seeds the in-memory stores with demo data so the CLI
// is usable without a server.
func memoryBackend(board *stage.Board) (remote.DealService, remote.RecordService[*contact.Contact], remote.RecordService[*journal.Entry]) {
	deals := memrecord.NewDealStore(board)
	first := board.First().ID
	deals.Seed(
		&deal.Deal{Name: "Acme platform renewal", Amount: 48000, StageID: first, OwnerRef: "ada", ExpectedCloseDate: time.Now().AddDate(0, 1, 0), Tags: []string{"renewal"}},
		&deal.Deal{Name: "Globex rollout", Amount: 125000, StageID: first, OwnerRef: "grace", Tags: []string{"enterprise"}},
		&deal.Deal{Name: "Initech starter plan", Amount: 5400, StageID: first, OwnerRef: "ada"},
	)

	contacts := memrecord.NewStore[*contact.Contact](func(c *contact.Contact, id string) *contact.Contact {
		out := c.Clone()
		out.ID = id
		return out
	})
	contacts.Seed(
		&contact.Contact{Name: "Ada Lovelace", Email: "ada@example.com", Company: "Analytical Engines"},
		&contact.Contact{Name: "Grace Hopper", Email: "grace@example.com", Company: "Flowmatic"},
	)

	journals := memrecord.NewStore[*journal.Entry](func(e *journal.Entry, id string) *journal.Entry {
		out := e.Clone()
		out.ID = id
		return out
	})
	journals.Seed(
		&journal.Entry{Memo: "License revenue", AccountCode: "4000", Amount: 48000, PostedAt: time.Now().AddDate(0, 0, -3)},
		&journal.Entry{Memo: "Onboarding services", AccountCode: "4100", Amount: 7500, PostedAt: time.Now().AddDate(0, 0, -1)},
	)
	return deals, contacts, journals
}
