// Command replicasrv is an example harness that hosts one crdttree replica
// per document and fans out accepted moves to connected WebSocket clients.
// It is glue for demonstration purposes, explicitly outside the CRDT core:
// no persistence, no transport guarantees beyond what gorilla/websocket
// gives us, no access control.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	crdttree "github.com/maidsafe/crdt-tree/crdttree"
)

// NodeID, Metadata and ActorID are string-keyed for this harness: node ids
// are UUIDs (minted server-side or supplied by the client), metadata is a
// free-form filename-like string, actor ids are client-supplied names.
type document struct {
	mu       sync.Mutex
	replica  *crdttree.Replica[string, string, string]
	clients  map[*websocket.Conn]struct{}
	clientMu sync.Mutex
}

type server struct {
	log       zerolog.Logger
	docs      map[string]*document
	docsMu    sync.Mutex
	upgrader  websocket.Upgrader
}

// moveRequest is the wire shape for a local move submitted over HTTP.
type moveRequest struct {
	Actor    string `json:"actor"`
	ChildID  string `json:"childId"`
	ParentID string `json:"parentId"`
	Metadata string `json:"metadata"`
}

// wireOperation mirrors crdttree.Operation[string,string,string] for JSON
// transport; broadcast to every other client on the document so it can
// apply the same move locally.
type wireOperation struct {
	Counter  uint64 `json:"counter"`
	Actor    string `json:"actor"`
	ChildID  string `json:"childId"`
	ParentID string `json:"parentId"`
	Metadata string `json:"metadata"`
}

func toWire(op crdttree.Operation[string, string, string]) wireOperation {
	return wireOperation{
		Counter:  op.Timestamp.Counter,
		Actor:    op.Timestamp.Actor,
		ChildID:  op.ChildID,
		ParentID: op.ParentID,
		Metadata: op.Metadata,
	}
}

func newServer() *server {
	return &server{
		log:  zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger(),
		docs: make(map[string]*document),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *server) getDocument(docID string) *document {
	s.docsMu.Lock()
	defer s.docsMu.Unlock()

	if d, ok := s.docs[docID]; ok {
		return d
	}
	// The server actor participates as just another replica so it can
	// resolve conflicts the same way any client does.
	d := &document{
		replica: crdttree.NewReplica[string, string, string]("server"),
		clients: make(map[*websocket.Conn]struct{}),
	}
	s.docs[docID] = d
	return d
}

func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ChildID == "" {
		req.ChildID = uuid.NewString()
	}

	doc := s.getDocument(docID)

	doc.mu.Lock()
	op := doc.replica.OpMove(req.ChildID, req.ParentID, req.Metadata)
	doc.replica.ApplyOpLocal(op)
	nodes := doc.replica.State().Tree().NumNodes()
	doc.mu.Unlock()

	s.log.Info().
		Str("doc", docID).
		Str("actor", req.Actor).
		Str("child", req.ChildID).
		Str("parent", req.ParentID).
		Msg("move applied")

	doc.broadcast(toWire(op))

	json.NewEncoder(w).Encode(map[string]any{
		"childId": req.ChildID,
		"nodes":   nodes,
	})
}

func (s *server) handleDebug(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]
	doc := s.getDocument(docID)

	doc.mu.Lock()
	dump := doc.replica.State().Tree().Dump()
	doc.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(dump))
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]
	doc := s.getDocument(docID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	doc.clientMu.Lock()
	doc.clients[conn] = struct{}{}
	doc.clientMu.Unlock()

	s.log.Info().Str("doc", docID).Msg("client connected")

	for {
		var wireOp wireOperation
		if err := conn.ReadJSON(&wireOp); err != nil {
			break
		}

		op := crdttree.Operation[string, string, string]{
			Timestamp: crdttree.Timestamp[string]{Counter: wireOp.Counter, Actor: wireOp.Actor},
			ChildID:   wireOp.ChildID,
			ParentID:  wireOp.ParentID,
			Metadata:  wireOp.Metadata,
		}

		doc.mu.Lock()
		doc.replica.ApplyOp(op)
		doc.mu.Unlock()

		doc.broadcastExcept(conn, wireOp)
	}

	doc.clientMu.Lock()
	delete(doc.clients, conn)
	doc.clientMu.Unlock()

	s.log.Info().Str("doc", docID).Msg("client disconnected")
}

func (d *document) broadcast(op wireOperation) {
	d.broadcastExcept(nil, op)
}

func (d *document) broadcastExcept(except *websocket.Conn, op wireOperation) {
	d.clientMu.Lock()
	defer d.clientMu.Unlock()
	for conn := range d.clients {
		if conn == except {
			continue
		}
		conn.WriteJSON(op)
	}
}

func main() {
	listen := flag.String("listen", ":8080", "address to listen on")
	flag.Parse()

	s := newServer()

	r := mux.NewRouter()
	r.HandleFunc("/docs/{doc}/move", s.handleMove).Methods(http.MethodPost)
	r.HandleFunc("/docs/{doc}/debug", s.handleDebug).Methods(http.MethodGet)
	r.HandleFunc("/docs/{doc}/ws", s.handleWebSocket)

	s.log.Info().Str("addr", *listen).Msg("replicasrv starting")
	if err := http.ListenAndServe(*listen, r); err != nil {
		s.log.Fatal().Err(err).Msg("server stopped")
	}
}
