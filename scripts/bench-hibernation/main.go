// bench-hibernation measures heap memory before and after Hibernate()
// calls across a set of populated tree sessions.
//
// Usage:
//
//	go run ./scripts/bench-hibernation --sessions 32 --nodes 100000 \
//	  --profile-dir docs/profiles/hibernation
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
)

func main() {
	sessions := flag.Int("sessions", 32, "Number of sessions to populate")
	nodes := flag.Int("nodes", 100000, "Nodes inserted per session")
	mode := flag.String("mode", "bst", "Tree mode: bst or heap")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles")
	seed := flag.Int64("seed", 1, "Seed for the value stream")

	flag.Parse()

	treeMode, err := ordtree.ParseMode(*mode)
	if err != nil {
		log.Fatalf("parse mode: %v", err)
	}

	if *profileDir != "" {
		if mkdirErr := os.MkdirAll(*profileDir, 0o755); mkdirErr != nil {
			log.Fatalf("mkdir profile-dir: %v", mkdirErr)
		}
	}

	manager := session.NewManager(0, session.Options{Mode: treeMode})
	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // benchmark data, not crypto
	ctx := context.Background()

	for s := range *sessions {
		sess, openErr := manager.Open(fmt.Sprintf("bench-%d", s))
		if openErr != nil {
			log.Fatalf("open session: %v", openErr)
		}

		for inserted := 0; inserted < *nodes; inserted++ {
			_, commitErr := sess.Commit(ctx, engine.OpInsert, fmt.Sprint(rng.Int63()))
			if commitErr != nil {
				log.Fatalf("insert: %v", commitErr)
			}
		}
	}

	before := heapInUse()
	writeProfile(*profileDir, "before.prof")

	hibernated := manager.HibernateIdle()

	after := heapInUse()
	writeProfile(*profileDir, "after.prof")

	log.Printf("sessions=%d nodes/session=%d hibernated=%d", *sessions, *nodes, hibernated)
	log.Printf("heap in use: before=%d bytes, after=%d bytes, saved=%d bytes",
		before, after, int64(before)-int64(after))
}

func heapInUse() uint64 {
	runtime.GC()

	var stats runtime.MemStats

	runtime.ReadMemStats(&stats)

	return stats.HeapInuse
}

func writeProfile(dir, name string) {
	if dir == "" {
		return
	}

	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		log.Fatalf("create profile: %v", err)
	}
	defer file.Close()

	if err := pprof.WriteHeapProfile(file); err != nil {
		log.Fatalf("write profile: %v", err)
	}
}
