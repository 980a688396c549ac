// Command replica runs a single participant in the key-value store's
// consensus cluster. Usage matches the protocol bootstrap contract (§6):
//
//	replica <port> <id> <other_id> [<other_id> ...]
//
// port is the shared simulator port every replica (and client) sends
// datagrams to; id is this replica's own id; the remaining arguments are
// the ids of every other replica in the cluster. Argument parsing and
// process bootstrap are themselves out of scope for the consensus core
// (§1) and live entirely in this file.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"raftkv/raft"
	"raftkv/transport"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <port> <id> <other_id> [<other_id> ...]\n", os.Args[0])
		os.Exit(1)
	}

	port, err := strconv.Atoi(os.Args[1])
	if err != nil {
		log.Fatalf("invalid port %q: %v", os.Args[1], err)
	}
	id := os.Args[2]
	others := os.Args[3:]

	conn, err := transport.Dial(port)
	if err != nil {
		log.Fatalf("dial simulator port %d: %v", port, err)
	}
	defer conn.Close()

	logger := raft.NewLogger(id, raft.INFO)
	replica := raft.NewReplica(id, others, conn, logger)

	replica.Start()
	if err := replica.Run(); err != nil {
		log.Fatalf("replica %s exited: %v", id, err)
	}
}
