package repo

import (
	"testing"
)

// MockRepo is a default repo rooted in a temp dir that keeps all state in memory
func MockRepo(t testing.TB) *Repo {
	rep := Default(t.TempDir())
	rep.Config.Storage.KvType = KVStorageTypeMemory
	rep.Config.Log.Level = "debug"
	return rep
}
