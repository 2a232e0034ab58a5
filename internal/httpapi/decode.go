package httpapi

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/fitdecode/fit"
	"github.com/samcharles93/fitdecode/internal/fitio"
	"github.com/samcharles93/fitdecode/internal/logger"
)

// messageDTO is the wire shape of one decoded message: field values
// flattened to plain Go types via fit.Value.Interface() so goccy/go-json
// can marshal them without knowing about the closed Value union.
type messageDTO struct {
	Message   string         `json:"message"`
	Number    uint16         `json:"number"`
	Timestamp string         `json:"timestamp,omitempty"`
	Fields    map[string]any `json:"fields"`
}

func toDTO(m fit.Message) messageDTO {
	dto := messageDTO{Message: m.Name, Number: m.GlobalMsgNum, Fields: make(map[string]any, len(m.Fields))}
	if m.HasTimestamp {
		dto.Timestamp = m.Timestamp.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, f := range m.Fields {
		dto.Fields[f.Name] = f.Value.Interface()
	}
	return dto
}

// handleDecode reads a multipart-uploaded FIT file and streams back
// newline-delimited JSON, one object per decoded message, so a client can
// start rendering before a large activity file finishes decoding.
func (s *Server) handleDecode(c *echo.Context) error {
	log := logger.FromContext(c.Request().Context())

	file, _, err := c.Request().FormFile("file")
	if err != nil {
		return writeError(c, http.StatusBadRequest, "missing \"file\" upload: "+err.Error())
	}
	defer file.Close()

	var r io.Reader = file
	if s.cfg.MaxUploadBytes > 0 {
		r = io.LimitReader(file, s.cfg.MaxUploadBytes)
	}

	ignoreCRC := c.QueryParam("ignore_crc") == "true"

	d, err := fit.Open(fitio.StreamSource(r), fit.WithCRCVerification(!ignoreCRC))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "opening FIT stream: "+err.Error())
	}
	defer d.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	res.WriteHeader(http.StatusOK)
	flusher, canFlush := res.(interface{ Flush() })
	enc := json.NewEncoder(res)

	count := 0
	for msg, decodeErr := range d.Messages() {
		if decodeErr != nil {
			if decodeErr == fit.ErrDone {
				break
			}
			log.Warn("decode stopped early", "messages_written", count, "error", decodeErr)
			_ = enc.Encode(map[string]string{"error": decodeErr.Error()})
			break
		}
		if err := enc.Encode(toDTO(msg)); err != nil {
			log.Warn("client disconnected mid-stream", "messages_written", count)
			return nil
		}
		if canFlush {
			flusher.Flush()
		}
		count++
	}

	log.Info("decode request complete", "messages_written", count)
	return nil
}
