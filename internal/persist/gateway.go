// Package persist is the durability layer: it stores the chain record,
// account records, and the price history in a storage.DB, and exports
// compressed snapshot backups. Writes are asynchronous; the engine commits
// in memory first, and a failed durable write is retried and logged but
// never rolls the commit back.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/log"
	"github.com/hashrush-gg/hashrush-core/internal/storage"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// Record namespaces.
const (
	prefixChain = "chain/" // chain/state -> ChainState JSON
	prefixAcct  = "acct/"  // acct/<player> -> Account JSON
	prefixPrice = "price/" // price/history -> []PricePoint JSON
)

var (
	keyChainState   = []byte("state")
	keyPriceHistory = []byte("history")
)

const (
	writeQueueSize = 1024
	writeRetries   = 3
	retryBackoff   = 100 * time.Millisecond
)

// Gateway persists ledger state. PutChain/PutAccount/PutPriceHistory are
// non-blocking: they marshal synchronously and queue the durable write for
// a background writer. If the queue is full the write is dropped with an
// error log; the next commit of the same record supersedes it anyway.
type Gateway struct {
	db     storage.DB
	chain  *storage.PrefixDB
	acct   *storage.PrefixDB
	prices *storage.PrefixDB

	jobs      chan writeJob
	done      chan struct{}
	closeOnce sync.Once

	log zerolog.Logger
}

type writeJob struct {
	db    *storage.PrefixDB
	key   []byte
	value []byte
}

// Open builds a gateway over db and starts the background writer.
func Open(db storage.DB) *Gateway {
	g := &Gateway{
		db:     db,
		chain:  storage.NewPrefixDB(db, []byte(prefixChain)),
		acct:   storage.NewPrefixDB(db, []byte(prefixAcct)),
		prices: storage.NewPrefixDB(db, []byte(prefixPrice)),
		jobs:   make(chan writeJob, writeQueueSize),
		done:   make(chan struct{}),
		log:    log.Store,
	}
	go g.writer()
	return g
}

// Close drains the write queue and stops the writer. Idempotent. The
// underlying DB is owned by the caller and stays open.
func (g *Gateway) Close() {
	g.closeOnce.Do(func() { close(g.jobs) })
	<-g.done
}

// writer applies queued writes. Consecutive pending jobs are flushed as
// one batch when the queue has built up a backlog.
func (g *Gateway) writer() {
	defer close(g.done)
	for job, ok := <-g.jobs; ok; job, ok = <-g.jobs {
		batch := []writeJob{job}
	drain:
		for {
			select {
			case j, more := <-g.jobs:
				if !more {
					break drain
				}
				batch = append(batch, j)
			default:
				break drain
			}
		}
		g.flush(batch)
	}
}

// flush writes a group of jobs, batched when possible, with bounded retry.
func (g *Gateway) flush(batch []writeJob) {
	var err error
	for attempt := 0; attempt < writeRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoff)
		}
		if err = g.apply(batch); err == nil {
			return
		}
		g.log.Warn().Err(err).Int("attempt", attempt+1).Int("writes", len(batch)).Msg("durable write failed")
	}
	// Accepted loss window: the in-memory commit stands.
	g.log.Error().Err(err).Int("writes", len(batch)).Msg("durable write dropped after retries")
}

func (g *Gateway) apply(batch []writeJob) error {
	if len(batch) == 1 {
		return batch[0].db.Put(batch[0].key, batch[0].value)
	}

	// Group by namespace and commit one batch per group.
	var order []*storage.PrefixDB
	groups := make(map[*storage.PrefixDB][]writeJob)
	for _, j := range batch {
		if _, seen := groups[j.db]; !seen {
			order = append(order, j.db)
		}
		groups[j.db] = append(groups[j.db], j)
	}
	for _, db := range order {
		b := db.NewBatch()
		for _, j := range groups[db] {
			if err := b.Put(j.key, j.value); err != nil {
				return err
			}
		}
		if err := b.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// enqueue hands a marshalled record to the writer without blocking.
func (g *Gateway) enqueue(db *storage.PrefixDB, key, value []byte) {
	select {
	case g.jobs <- writeJob{db: db, key: key, value: value}:
	default:
		g.log.Error().Str("key", string(key)).Msg("write queue full, dropping write")
	}
}

// PutChain queues the chain record.
func (g *Gateway) PutChain(c *econ.ChainState) {
	data, err := json.Marshal(c)
	if err != nil {
		g.log.Error().Err(err).Msg("chain marshal")
		return
	}
	g.enqueue(g.chain, keyChainState, data)
}

// PutAccount queues one account record.
func (g *Gateway) PutAccount(a *econ.Account) {
	data, err := json.Marshal(a)
	if err != nil {
		g.log.Error().Err(err).Str("player", string(a.ID)).Msg("account marshal")
		return
	}
	g.enqueue(g.acct, []byte(a.ID), data)
}

// PutPriceHistory queues the price-history record.
func (g *Gateway) PutPriceHistory(points []econ.PricePoint) {
	data, err := json.Marshal(points)
	if err != nil {
		g.log.Error().Err(err).Msg("price history marshal")
		return
	}
	g.enqueue(g.prices, keyPriceHistory, data)
}

// LoadChain reads the chain record. Returns (nil, nil) when no record
// exists yet (fresh data directory).
func (g *Gateway) LoadChain() (*econ.ChainState, error) {
	data, err := g.chain.Get(keyChainState)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chain record: %w", err)
	}
	var c econ.ChainState
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("chain record decode: %w", err)
	}
	return &c, nil
}

// LoadAccounts reads every account record.
func (g *Gateway) LoadAccounts() ([]*econ.Account, error) {
	var accounts []*econ.Account
	err := g.acct.ForEach(nil, func(key, value []byte) error {
		var a econ.Account
		if err := json.Unmarshal(value, &a); err != nil {
			return fmt.Errorf("account %q decode: %w", key, err)
		}
		if a.ID == "" {
			a.ID = types.PlayerID(key)
		}
		accounts = append(accounts, &a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// LoadPriceHistory reads the price-history record. Missing record yields
// an empty history.
func (g *Gateway) LoadPriceHistory() ([]econ.PricePoint, error) {
	data, err := g.prices.Get(keyPriceHistory)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	var points []econ.PricePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("price history decode: %w", err)
	}
	return points, nil
}
