package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
)

const (
	inboundReconnectMinDelay = 1 * time.Second
	inboundReconnectMaxDelay = 30 * time.Second
	inboundReadTimeout       = 90 * time.Second
	inboundDialTimeout       = 10 * time.Second
)

// inboundFrame is one message from the provider gateway: a lead replied on
// some channel and the raw content is attached.
type inboundFrame struct {
	LeadID    string `json:"lead_id"`
	CompanyID string `json:"company_id"`
	Channel   string `json:"channel"`
	Content   string `json:"content"`
}

type inboundRuntimeState struct {
	Enabled         bool   `json:"enabled"`
	Connected       bool   `json:"connected"`
	GatewayURL      string `json:"gateway_url,omitempty"`
	LastConnectedAt string `json:"last_connected_at,omitempty"`
	LastEventAt     string `json:"last_event_at,omitempty"`
	LastError       string `json:"last_error,omitempty"`
	LastErrorAt     string `json:"last_error_at,omitempty"`
}

func (s *Server) mutateInboundState(apply func(*inboundRuntimeState)) {
	s.inboundMu.Lock()
	defer s.inboundMu.Unlock()
	apply(&s.inbound)
}

func (s *Server) snapshotInboundState() inboundRuntimeState {
	s.inboundMu.RLock()
	defer s.inboundMu.RUnlock()
	return s.inbound
}

func (s *Server) getInboundState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotInboundState())
}

// startInboundSupervisor runs the reply listener when a gateway URL is
// configured. The listener reconnects with exponential backoff and stops
// with the rest of the background work.
func (s *Server) startInboundSupervisor() {
	url := strings.TrimSpace(s.cfg.Inbound.URL)
	if url == "" {
		return
	}
	s.mutateInboundState(func(st *inboundRuntimeState) {
		st.Enabled = true
		st.GatewayURL = url
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.executorWG.Add(1)
	go func() {
		defer s.executorWG.Done()
		<-s.executorStop
		cancel()
	}()

	s.executorWG.Add(1)
	go func() {
		defer s.executorWG.Done()
		s.runInboundLoop(ctx, url)
	}()
}

func (s *Server) runInboundLoop(ctx context.Context, url string) {
	backoff := inboundReconnectMinDelay
	for {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		err := s.runInboundSession(ctx, url)
		if err != nil && ctx.Err() == nil {
			log.Printf("inbound session ended: %v", err)
			s.mutateInboundState(func(st *inboundRuntimeState) {
				st.Connected = false
				st.LastError = strings.TrimSpace(err.Error())
				st.LastErrorAt = nowISO()
			})
		}
		if ctx.Err() != nil {
			return
		}
		// A session that held for a while resets the backoff.
		if time.Since(start) > inboundReconnectMaxDelay {
			backoff = inboundReconnectMinDelay
		}

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
		if backoff < inboundReconnectMaxDelay {
			backoff *= 2
			if backoff > inboundReconnectMaxDelay {
				backoff = inboundReconnectMaxDelay
			}
		}
	}
}

func (s *Server) runInboundSession(ctx context.Context, url string) error {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: inboundDialTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.mutateInboundState(func(st *inboundRuntimeState) {
		st.Connected = true
		st.LastConnectedAt = nowISO()
		st.LastError = ""
	})

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-closed:
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(inboundReadTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			log.Printf("inbound frame decode failed: %v", err)
			continue
		}
		s.handleInboundFrame(frame)
	}
}

// handleInboundFrame persists the reply as an inbound interaction and kicks
// off reply processing in the background.
func (s *Server) handleInboundFrame(frame inboundFrame) {
	if frame.LeadID == "" || frame.Content == "" {
		log.Printf("inbound frame missing lead_id or content, dropping")
		return
	}
	channel := strings.ToLower(strings.TrimSpace(frame.Channel))
	if channel != domain.InteractionTypeEmail && channel != domain.InteractionTypeSMS {
		channel = domain.InteractionTypeEmail
	}
	companyID := frame.CompanyID
	if companyID == "" {
		if doc, ok := s.store.Get(domain.CollectionLeads, frame.LeadID); ok {
			companyID, _ = doc["company_id"].(string)
		}
	}

	interaction := domain.Interaction{
		CompanyID: companyID,
		LeadID:    frame.LeadID,
		Type:      channel,
		Direction: domain.DirectionInbound,
		Content:   frame.Content,
		Channel:   domain.ChannelAutomatedWorkflow,
		Status:    domain.InteractionStatusReceived,
		CreatedAt: nowISO(),
	}
	doc, err := docstore.Encode(interaction)
	if err != nil {
		log.Printf("inbound interaction encode failed: %v", err)
		return
	}
	created, err := s.store.Create(domain.CollectionInteractions, doc, "")
	if err != nil {
		log.Printf("inbound interaction create failed: %v", err)
		return
	}
	interactionID, _ := created["id"].(string)

	s.mutateInboundState(func(st *inboundRuntimeState) {
		st.LastEventAt = nowISO()
	})

	s.runInBackground("process_lead_reply", func(ctx context.Context) domain.WorkflowResult {
		return s.nurturing.ProcessLeadReply(ctx, interactionID)
	})
}
