package telemetry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	apperrors "github.com/zsiec/pitwall/internal/errors"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
	"github.com/zsiec/pitwall/internal/telemetry/reference"
	"github.com/zsiec/pitwall/internal/telemetry/registry"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// Handlers wraps the telemetry manager to provide HTTP handlers
type Handlers struct {
	manager *Manager
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

// NewHandlers creates a new handlers wrapper
func NewHandlers(manager *Manager, errorHandler *apperrors.ErrorHandler, log logger.Logger) *Handlers {
	return &Handlers{
		manager: manager,
		errors:  errorHandler,
		logger:  log.WithField("component", "telemetry_handlers"),
	}
}

// RegisterRoutes registers all telemetry API routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Game sessions
	api.HandleFunc("/sessions", h.HandleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", h.HandleGetSession).Methods("GET")

	// Decoded records
	api.HandleFunc("/packets/{type}/latest", h.HandleLatest).Methods("GET")
	api.HandleFunc("/packets/{type}/history", h.HandleHistory).Methods("GET")

	api.HandleFunc("/stats", h.HandleStats).Methods("GET")

	h.logger.Info("Telemetry routes registered")
}

// API Response DTOs
type SessionListResponse struct {
	Sessions []SessionDTO `json:"sessions"`
	Count    int          `json:"count"`
	Time     time.Time    `json:"time"`
}

type SessionDTO struct {
	*registry.Session
	TotalPackets uint64        `json:"total_packets"`
	Conditions   *SessionNames `json:"conditions,omitempty"`
	Drivers      []DriverNames `json:"drivers,omitempty"`
}

// SessionNames resolves the ids of a session packet
type SessionNames struct {
	Track       string `json:"track"`
	SessionType string `json:"session_type"`
	Weather     string `json:"weather"`
	Formula     string `json:"formula"`
}

// DriverNames resolves the ids of one participant
type DriverNames struct {
	CarIndex    int    `json:"car_index"`
	Name        string `json:"name"`
	Driver      string `json:"driver"`
	Team        string `json:"team"`
	Nationality string `json:"nationality"`
	RaceNumber  uint8  `json:"race_number"`
	AI          bool   `json:"ai"`
}

// Record is the API rendering of one decoded packet
type Record struct {
	Type        string        `json:"type"`
	SessionID   string        `json:"session_id"`
	FrameID     uint32        `json:"frame_id"`
	SessionTime packet.Float  `json:"session_time"`
	Data        packet.Packet `json:"data"`
	Names       interface{}   `json:"names,omitempty"`
}

type HistoryResponse struct {
	Type    string   `json:"type"`
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// NewRecord wraps a decoded packet, attaching reference names to session
// and participants packets
func NewRecord(p packet.Packet) Record {
	h := p.PacketHeader()
	rec := Record{
		Type:        h.Type.String(),
		SessionID:   registry.GenerateSessionID(h.SessionUID),
		FrameID:     h.FrameID,
		SessionTime: h.SessionTime,
		Data:        p,
	}

	switch v := p.(type) {
	case *packet.SessionPacket:
		rec.Names = NewSessionNames(v)
	case *packet.ParticipantsPacket:
		rec.Names = NewDriverNames(v)
	}
	return rec
}

// NewSessionNames resolves the reference ids of a session packet
func NewSessionNames(p *packet.SessionPacket) *SessionNames {
	return &SessionNames{
		Track:       reference.TrackName(p.TrackID),
		SessionType: reference.SessionTypeName(p.SessionType),
		Weather:     reference.WeatherName(p.Weather),
		Formula:     reference.FormulaName(p.Formula),
	}
}

// NewDriverNames resolves the active participants
func NewDriverNames(p *packet.ParticipantsPacket) []DriverNames {
	return lo.Map(p.Active(), func(c packet.Participant, i int) DriverNames {
		return DriverNames{
			CarIndex:    i,
			Name:        c.DisplayName(),
			Driver:      reference.DriverName(c.DriverID),
			Team:        reference.TeamName(c.TeamID),
			Nationality: reference.NationalityName(c.Nationality),
			RaceNumber:  c.RaceNumber,
			AI:          c.AIControlled == 1,
		}
	})
}

func (h *Handlers) sessionDTO(s *registry.Session, detailed bool) SessionDTO {
	dto := SessionDTO{
		Session:      s,
		TotalPackets: s.TotalPackets(),
	}
	if !detailed {
		return dto
	}

	store := h.manager.Store()
	if p, ok := store.Latest(packet.TypeSession); ok && p.PacketHeader().SessionUID == s.SessionUID {
		dto.Conditions = NewSessionNames(p.(*packet.SessionPacket))
	}
	if p, ok := store.Latest(packet.TypeParticipants); ok && p.PacketHeader().SessionUID == s.SessionUID {
		dto.Drivers = NewDriverNames(p.(*packet.ParticipantsPacket))
	}
	return dto
}

// HandleListSessions lists all known game sessions
func (h *Handlers) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.manager.Registry().List(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, apperrors.WrapServiceDownError(err, "session registry"))
		return
	}

	dtos := lo.Map(sessions, func(s *registry.Session, _ int) SessionDTO {
		return h.sessionDTO(s, false)
	})

	h.writeJSON(w, r, http.StatusOK, SessionListResponse{
		Sessions: dtos,
		Count:    len(dtos),
		Time:     time.Now(),
	})
}

// HandleGetSession returns one session with the names of its track and
// drivers
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := h.manager.Registry().Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, registry.ErrSessionNotFound) {
			h.errors.HandleError(w, r, apperrors.NewSessionNotFoundError(sessionID))
			return
		}
		h.errors.HandleError(w, r, apperrors.WrapServiceDownError(err, "session registry"))
		return
	}

	h.writeJSON(w, r, http.StatusOK, h.sessionDTO(session, true))
}

// HandleLatest returns the newest record of a packet type
func (h *Handlers) HandleLatest(w http.ResponseWriter, r *http.Request) {
	t, ok := h.packetType(w, r)
	if !ok {
		return
	}

	p, found := h.manager.Store().Latest(t)
	if !found {
		h.errors.HandleError(w, r, apperrors.NewNoRecordError(t.String()))
		return
	}

	h.writeJSON(w, r, http.StatusOK, NewRecord(p))
}

// HandleHistory returns up to limit records of a packet type, oldest first
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	t, ok := h.packetType(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			h.errors.HandleError(w, r, apperrors.NewInvalidLimitError(raw, maxHistoryLimit))
			return
		}
		limit = n
	}

	records := lo.Map(h.manager.Store().History(t, limit), func(p packet.Packet, _ int) Record {
		return NewRecord(p)
	})

	h.writeJSON(w, r, http.StatusOK, HistoryResponse{
		Type:    t.String(),
		Count:   len(records),
		Records: records,
	})
}

// HandleStats returns listener, history and publisher statistics
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.manager.GetStats(r.Context()))
}

func (h *Handlers) packetType(w http.ResponseWriter, r *http.Request) (packet.PacketType, bool) {
	name := mux.Vars(r)["type"]
	t, err := packet.ParsePacketType(name)
	if err != nil {
		known := lo.Map(packet.KnownTypes, func(t packet.PacketType, _ int) string { return t.String() })
		h.errors.HandleError(w, r, apperrors.NewUnknownPacketTypeError(name, known))
		return t, false
	}
	return t, true
}

// writeJSON encodes v before the status line is written, so a failed
// encode turns into a 500 error body
func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		h.errors.HandleError(w, r, apperrors.WrapInternalError(err, "Failed to encode response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
