package web

import (
	"bytes"
	"io"
	"net/http"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/chart"
	"github.com/gin-gonic/gin"
)

// svg draws a chart in memory and writes it, or the error status when drawing fails.
func (s *Server) svg(c *gin.Context, draw func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		code := status(err)
		if code >= http.StatusInternalServerError {
			s.log.Error("chart failed", "path", c.Request.URL.Path, "error", err)
		}
		c.String(code, err.Error())
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, chart.SVG.ContentType(), buf.Bytes())
}

func (s *Server) historyChart(c *gin.Context) {
	symbol := c.Param("symbol")
	points, err := s.t.CoinHistory(c.Request.Context(), symbol)
	s.svg(c, func(w io.Writer) error {
		if err != nil {
			return err
		}
		return chart.History(w, chart.SVG, symbol, points)
	})
}

func (s *Server) marketChart(c *gin.Context) {
	coin := c.Param("coin")
	points, err := s.t.MarketChart(c.Request.Context(), coin, c.DefaultQuery("days", "30"))
	s.svg(c, func(w io.Writer) error {
		if err != nil {
			return err
		}
		return chart.Market(w, chart.SVG, coin, points)
	})
}

// shareChart draws the holdings split by coin, wallet or type with draw.
func (s *Server) shareChart(draw func(io.Writer, chart.Format, string, []cryptofolio.Share) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := s.t.Summary(c.Request.Context(), c.Query("wallet"))
		s.svg(c, func(w io.Writer) error {
			if err != nil {
				return err
			}
			switch by := c.Param("by"); by {
			case "coin":
				return draw(w, chart.SVG, "Amount by coin", sum.BySymbol)
			case "wallet":
				return draw(w, chart.SVG, "Amount by wallet", sum.ByWallet)
			case "type":
				return draw(w, chart.SVG, "Amount by type", sum.ByType)
			default:
				return badRequest("unknown split %q: want coin, wallet or type", by)
			}
		})
	}
}

func (s *Server) timelineChart(c *gin.Context) {
	sum, err := s.t.Summary(c.Request.Context(), c.Query("wallet"))
	s.svg(c, func(w io.Writer) error {
		if err != nil {
			return err
		}
		return chart.Timeline(w, chart.SVG, sum.Timeline)
	})
}
