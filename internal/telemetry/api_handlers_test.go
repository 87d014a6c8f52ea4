package telemetry

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zsiec/pitwall/internal/errors"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
	"github.com/zsiec/pitwall/internal/telemetry/testdata"
)

func setupHandlers(t *testing.T) (*Manager, *mux.Router) {
	t.Helper()
	m, _ := newTestManager(t)

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	router := mux.NewRouter()
	NewHandlers(m, apperrors.NewErrorHandler(quiet), logger.NewNullLogger()).RegisterRoutes(router)
	return m, router
}

func get(t *testing.T, router http.Handler, path string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
	}
	return rec
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func TestHandleListSessions(t *testing.T) {
	m, router := setupHandlers(t)

	var empty SessionListResponse
	rec := get(t, router, "/api/v1/sessions", &empty)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Sessions)

	feed(t, m, testdata.New(packet.TypeLap).Bytes())
	feed(t, m, testdata.New(packet.TypeLap).SessionUID(7).Bytes())

	var resp struct {
		Sessions []struct {
			ID           string            `json:"id"`
			SessionUID   string            `json:"session_uid"`
			Status       string            `json:"status"`
			TotalPackets uint64            `json:"total_packets"`
			Packets      map[string]uint64 `json:"packets"`
		} `json:"sessions"`
		Count int `json:"count"`
	}
	rec = get(t, router, "/api/v1/sessions", &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, 2, resp.Count)

	ids := make([]string, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		ids = append(ids, s.ID)
		if s.ID != testSessionID {
			continue
		}
		assert.Equal(t, "2246800662264969608", s.SessionUID)
		assert.Equal(t, "active", s.Status)
		assert.Equal(t, uint64(1), s.TotalPackets)
		assert.Equal(t, uint64(1), s.Packets["lap"])
	}
	assert.ElementsMatch(t, []string{testSessionID, "0000000000000007"}, ids)
}

func TestHandleGetSession(t *testing.T) {
	m, router := setupHandlers(t)

	feed(t, m, testdata.New(packet.TypeSession).Session(7, 10, 3, 3600).Bytes())
	feed(t, m, testdata.New(packet.TypeParticipants).
		ActiveCars(2).
		Participant(0, 0, "HAMILTON").
		Participant(1, 1, "LECLERC").
		Bytes())

	var resp SessionDTO
	rec := get(t, router, "/api/v1/sessions/"+testSessionID, &resp)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, resp.Conditions)
	assert.Equal(t, SessionNames{
		Track:       "Silverstone",
		SessionType: "Race",
		Weather:     "Light Rain",
		Formula:     "F1 Modern",
	}, *resp.Conditions)

	require.Len(t, resp.Drivers, 2)
	assert.Equal(t, "HAMILTON", resp.Drivers[0].Name)
	assert.Equal(t, "Mercedes", resp.Drivers[0].Team)
	assert.Equal(t, 1, resp.Drivers[1].CarIndex)
	assert.Equal(t, "Ferrari", resp.Drivers[1].Team)
	assert.Equal(t, uint64(2), resp.TotalPackets)
}

func TestHandleGetSession_OtherSessionHasNoNames(t *testing.T) {
	m, router := setupHandlers(t)

	feed(t, m, testdata.New(packet.TypeMotion).SessionUID(1).Bytes())
	feed(t, m, testdata.New(packet.TypeSession).Session(7, 10, 3, 3600).Bytes())

	var resp SessionDTO
	rec := get(t, router, "/api/v1/sessions/0000000000000001", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resp.Conditions)
	assert.Empty(t, resp.Drivers)
}

func TestHandleGetSession_NotFound(t *testing.T) {
	_, router := setupHandlers(t)

	var body errorBody
	rec := get(t, router, "/api/v1/sessions/deadbeef", &body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body.Error.Type)
	assert.Equal(t, "SESSION_NOT_FOUND", body.Error.Code)
	assert.Contains(t, body.Error.Message, "deadbeef")
}

func TestHandleLatest(t *testing.T) {
	m, router := setupHandlers(t)

	feed(t, m, testdata.Event("FTLP").Frame(40).EventCar(3).EventLapTime(88.25).Bytes())

	var rec struct {
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
		FrameID   uint32 `json:"frame_id"`
		Data      struct {
			Kind     string   `json:"kind"`
			CarIndex *uint8   `json:"car_index"`
			LapTime  *float32 `json:"lap_time"`
		} `json:"data"`
	}
	resp := get(t, router, "/api/v1/packets/event/latest", &rec)
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "event", rec.Type)
	assert.Equal(t, testSessionID, rec.SessionID)
	assert.Equal(t, uint32(40), rec.FrameID)
	assert.Equal(t, "fastest_lap", rec.Data.Kind)
	require.NotNil(t, rec.Data.CarIndex)
	assert.Equal(t, uint8(3), *rec.Data.CarIndex)
	require.NotNil(t, rec.Data.LapTime)
	assert.Equal(t, float32(88.25), *rec.Data.LapTime)
}

func TestHandleLatest_NonFiniteFloats(t *testing.T) {
	m, router := setupHandlers(t)

	lap := testdata.New(packet.TypeLap).Lap(0, 1, 2).
		F32(packet.HeaderSize, float32(math.NaN())).
		F32(packet.HeaderSize+8, float32(math.Inf(1)))
	feed(t, m, lap.Bytes())

	for _, path := range []string{"/api/v1/packets/lap/latest", "/api/v1/packets/lap/history"} {
		t.Run(path, func(t *testing.T) {
			resp := get(t, router, path, nil)
			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
			assert.Contains(t, resp.Body.String(), `"last_lap_time":null`)
			assert.Contains(t, resp.Body.String(), `"best_lap_time":null`)
		})
	}
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	h := &Handlers{errors: apperrors.NewErrorHandler(quiet), logger: logger.NewNullLogger()}

	rec := httptest.NewRecorder()
	h.writeJSON(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil), http.StatusOK, math.Inf(-1))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Type)
}

func TestHandleLatest_Errors(t *testing.T) {
	_, router := setupHandlers(t)

	tests := []struct {
		name     string
		path     string
		status   int
		errType  string
		wantCode string
	}{
		{"no record yet", "/api/v1/packets/motion/latest", http.StatusNotFound, "NOT_FOUND", "NO_RECORD"},
		{"unknown type", "/api/v1/packets/weather/latest", http.StatusBadRequest, "VALIDATION_ERROR", "UNKNOWN_PACKET_TYPE"},
		{"unrecognized is not queryable", "/api/v1/packets/unrecognized/history", http.StatusBadRequest, "VALIDATION_ERROR", "UNKNOWN_PACKET_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			rec := get(t, router, tt.path, &body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errType, body.Error.Type)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestHandleLatest_ParticipantNames(t *testing.T) {
	m, router := setupHandlers(t)

	feed(t, m, testdata.New(packet.TypeParticipants).ActiveCars(1).Participant(0, 7, "GROSJEAN").Bytes())

	var rec struct {
		Names []DriverNames `json:"names"`
	}
	resp := get(t, router, "/api/v1/packets/participants/latest", &rec)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, rec.Names, 1)
	assert.Equal(t, "GROSJEAN", rec.Names[0].Name)
	assert.Equal(t, "Haas", rec.Names[0].Team)
}

func TestHandleHistory(t *testing.T) {
	m, router := setupHandlers(t)

	for frame := uint32(1); frame <= 3; frame++ {
		feed(t, m, testdata.New(packet.TypeLap).Frame(frame).Bytes())
	}

	tests := []struct {
		name   string
		query  string
		frames []uint32
	}{
		{"default limit", "", []uint32{1, 2, 3}},
		{"newest two oldest first", "?limit=2", []uint32{2, 3}},
		{"limit above length", "?limit=500", []uint32{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := get(t, router, "/api/v1/packets/lap/history"+tt.query, nil)
			require.Equal(t, http.StatusOK, raw.Code)

			var body struct {
				Type    string `json:"type"`
				Count   int    `json:"count"`
				Records []struct {
					FrameID uint32 `json:"frame_id"`
				} `json:"records"`
			}
			require.NoError(t, json.Unmarshal(raw.Body.Bytes(), &body))
			assert.Equal(t, "lap", body.Type)
			assert.Equal(t, len(tt.frames), body.Count)

			frames := make([]uint32, 0, len(body.Records))
			for _, r := range body.Records {
				frames = append(frames, r.FrameID)
			}
			assert.Equal(t, tt.frames, frames)
		})
	}
}

func TestHandleHistory_InvalidLimit(t *testing.T) {
	_, router := setupHandlers(t)

	for _, limit := range []string{"0", "-1", "abc", "1001"} {
		t.Run(limit, func(t *testing.T) {
			var body errorBody
			rec := get(t, router, "/api/v1/packets/lap/history?limit="+limit, &body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Type)
			assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
		})
	}
}

func TestHandleHistory_Empty(t *testing.T) {
	_, router := setupHandlers(t)

	var body struct {
		Count   int               `json:"count"`
		Records []json.RawMessage `json:"records"`
	}
	rec := get(t, router, "/api/v1/packets/setup/history", &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Records)
}

func TestHandleStats(t *testing.T) {
	m, router := setupHandlers(t)
	feed(t, m, testdata.New(packet.TypeMotion).Bytes())

	var stats struct {
		Started bool `json:"started"`
		History []struct {
			Type string `json:"type"`
			Len  int    `json:"len"`
		} `json:"history"`
		Publisher struct {
			Published uint64 `json:"published"`
		} `json:"publisher"`
		Sessions int `json:"sessions"`
	}
	rec := get(t, router, "/api/v1/stats", &stats)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, stats.Started)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, uint64(1), stats.Publisher.Published)
	require.Len(t, stats.History, len(packet.KnownTypes))
	assert.Equal(t, "motion", stats.History[0].Type)
	assert.Equal(t, 1, stats.History[0].Len)
}

func TestNewRecord(t *testing.T) {
	p, err := packet.Decode(testdata.New(packet.TypeSession).Session(-1, 12, 0, 0).Frame(9).Bytes())
	require.NoError(t, err)

	rec := NewRecord(p)
	assert.Equal(t, "session", rec.Type)
	assert.Equal(t, uint32(9), rec.FrameID)
	assert.Same(t, p, rec.Data)

	names, ok := rec.Names.(*SessionNames)
	require.True(t, ok)
	assert.Equal(t, "Unknown", names.Track)
	assert.Equal(t, "Time Trial", names.SessionType)
	assert.Equal(t, "Clear", names.Weather)

	lap, err := packet.Decode(testdata.New(packet.TypeLap).Bytes())
	require.NoError(t, err)
	assert.Nil(t, NewRecord(lap).Names)
}
