package node

import (
	"pvnode/cfg"
	"pvnode/db"
	"pvnode/p2p/passive"
	"pvnode/util"
	"pvnode/util/log"

	"path/filepath"
	"time"
)

// Node wires the passive address manager to its stores and runs them as
// one service. The dialing and gossip layers hang off the manager.
type Node struct {
	util.BaseService

	// config
	config *cfg.Config

	mgr  *Manager
	book *passive.Book
	bans *passive.BanTable
	kvdb db.KvDb
}

type Manager = passive.AddrManager

// NewNode returns a new, ready to go, Node.
func NewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	var kvdb db.KvDb
	if config.DbPath == "" {
		kvdb = db.NewMemDb()
	} else {
		ldb, err := db.NewLevelDb(filepath.Join(config.DbPath, "reconn"), 0, 0)
		if err != nil {
			return nil, err
		}
		kvdb = ldb
	}

	mgr := passive.NewAddrManager()
	mgr.SetLogger(logger.With("module", "addrman"))
	mgr.SetAutoEvict(config.Passive.AutoEvict, int32(config.Passive.AttemptLimit))

	book := passive.NewBook(config.Passive.AddrFile, mgr)
	book.SetLogger(logger.With("module", "book"))
	book.SetSaveInterval(config.Passive.SaveInterval)
	book.SetReconnStore(passive.NewReconnStore(kvdb))

	bans := passive.NewBanTable()
	if loaded, ok, err := passive.LoadBansFromFile(config.Passive.BanFile); err != nil {
		logger.Error("Failed to load ban table, starting empty", "file", config.Passive.BanFile, "err", err)
	} else if ok {
		bans.Restore(loaded)
	}

	n := &Node{
		config: config,
		mgr:    mgr,
		book:   book,
		bans:   bans,
		kvdb:   kvdb,
	}
	n.BaseService.Init(logger.With("module", "node"), "Node", n)
	return n, nil
}

// OnStart implements Service.
func (n *Node) OnStart() error {
	return n.book.Start()
}

// OnStop implements Service.
func (n *Node) OnStop() {
	n.BaseService.OnStop()

	n.book.Stop()
	n.book.Wait()

	n.bans.Sweep(time.Now().Unix())
	err := passive.SaveBansToFile(n.config.Passive.BanFile, n.bans.Snapshot())
	if err != nil {
		n.Logger.Error("Failed to save ban table", "err", err)
	}

	n.kvdb.Close()
}

// AddrManager returns the node's passive address manager.
func (n *Node) AddrManager() *Manager {
	return n.mgr
}

// Book returns the persistence service of the address manager.
func (n *Node) Book() *passive.Book {
	return n.book
}

// BanTable returns the node's ban table.
func (n *Node) BanTable() *passive.BanTable {
	return n.bans
}
