package passive

import (
	"pvnode/util"

	"sync"
	"time"
)

// Book ties an AddrManager to its on-disk stores: it loads the address
// file on start, then snapshots the manager to disk on a ticker and
// once more on stop. Snapshots are taken under the manager lock but
// serialized and written outside it, so slow disks never stall address
// operations.
type Book struct {
	util.BaseService

	// immutable after creation
	filePath     string
	saveInterval time.Duration

	mgr     *AddrManager
	reconns *ReconnStore // optional

	wg sync.WaitGroup
}

func NewBook(filePath string, mgr *AddrManager) *Book {
	b := &Book{
		filePath:     filePath,
		saveInterval: dumpAddressInterval,
		mgr:          mgr,
	}
	b.BaseService.Init(nil, "Book", b)
	return b
}

// SetReconnStore makes the book also mirror the reconn set into the
// given store on every save. Must be called before Start.
func (b *Book) SetReconnStore(st *ReconnStore) {
	b.reconns = st
}

// SetSaveInterval overrides the dump interval. Must be called before
// Start.
func (b *Book) SetSaveInterval(d time.Duration) {
	if d > 0 {
		b.saveInterval = d
	}
}

func (b *Book) FilePath() string {
	return b.filePath
}

func (b *Book) Manager() *AddrManager {
	return b.mgr
}

// OnStart implements Service.
func (b *Book) OnStart() error {
	b.load()

	// wg.Add to ensure that any invocation of .Wait()
	// later on will wait for saveRoutine to terminate.
	b.wg.Add(1)
	go b.saveRoutine()

	return nil
}

// OnStop implements Service.
func (b *Book) OnStop() {
	b.BaseService.OnStop()
}

func (b *Book) Wait() {
	b.wg.Wait()
}

// Save persists the current state to disk.
func (b *Book) Save() {
	b.save()
}

func (b *Book) saveRoutine() {
	defer b.wg.Done()

	tiker := time.NewTicker(b.saveInterval)
out:
	for {
		select {
		case <-tiker.C:
			b.save()
		case <-b.C4Quit():
			break out
		}
	}
	tiker.Stop()
	b.save()
	b.Logger.Info("Address book done")
}

func (b *Book) load() {
	s, ok, err := LoadAddrsFromFile(b.filePath)
	if err != nil {
		b.Logger.Error("Failed to load address book, starting empty", "file", b.filePath, "err", err)
		return
	}
	if !ok {
		return
	}

	b.mgr.Restore(s)
	b.mgr.MakeContainers()
	b.Logger.Info("Loaded address book", "file", b.filePath, "size", b.mgr.Size())
}

func (b *Book) save() {
	b.Logger.Info("Saving address book", "size", b.mgr.Size())

	s := b.mgr.Snapshot()
	if err := SaveAddrsToFile(b.filePath, s); err != nil {
		b.Logger.Error("Failed to save address book", "file", b.filePath, "err", err)
	}

	if b.reconns != nil {
		err := b.reconns.Sync(b.mgr.GetReconns(), b.mgr.clock()())
		if err != nil {
			b.Logger.Error("Failed to sync reconn store", "err", err)
		}
	}
}
