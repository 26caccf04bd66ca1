package web

import (
	"net/http"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/tracker"
	"github.com/gin-gonic/gin"
)

func (s *Server) apiEntries(c *gin.Context) {
	entries, err := s.t.Entries(c.Request.Context(), c.Query("wallet"))
	if err != nil {
		s.failJSON(c, err)
		return
	}
	if entries == nil {
		entries = cryptofolio.Entries{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) apiEntry(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	e, err := s.t.Entry(c.Request.Context(), id)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// apiCreateEntry adds the posted entry, a purchase or a staking gain by its kind.
func (s *Server) apiCreateEntry(c *gin.Context) {
	var e cryptofolio.Entry
	if err := c.ShouldBindJSON(&e); err != nil {
		s.failJSON(c, badRequest("%v", err))
		return
	}
	ctx := c.Request.Context()
	var err error
	if e.Kind == cryptofolio.Staking {
		e, err = s.t.AddStaking(ctx, tracker.Staking{
			Coin: e.Coin, Symbol: e.Symbol, Amount: e.Amount, Type: e.Type, Wallet: e.Wallet,
		})
	} else {
		e, err = s.t.AddPurchase(ctx, tracker.Purchase{
			Coin: e.Coin, Symbol: e.Symbol, Amount: e.Amount, Price: e.BuyPrice,
			FeeBuy: e.FeeBuyPercent, FeeSell: e.FeeSellPercent, Type: e.Type, Wallet: e.Wallet,
		})
	}
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) apiDeleteEntry(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		s.failJSON(c, err)
		return
	}
	if err := s.t.DeleteEntry(c.Request.Context(), id); err != nil {
		s.failJSON(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// analysisJSON is the JSON form of a tracker report.
type analysisJSON struct {
	At         time.Time             `json:"at"`
	SnapshotID string                `json:"snapshot_id,omitempty"`
	Analysis   *cryptofolio.Analysis `json:"analysis"`
	Alerts     []alertJSON           `json:"alerts"`
}

type alertJSON struct {
	Kind    string `json:"kind"`
	Symbol  string `json:"symbol"`
	Wallet  string `json:"wallet,omitempty"`
	Message string `json:"message"`
}

// apiAnalysis runs an analysis. last=1 returns the latest one instead.
func (s *Server) apiAnalysis(c *gin.Context) {
	r := s.t.LastReport()
	if c.Query("last") == "" || r == nil {
		var err error
		opts := options(c)
		opts.NoSave = c.Query("nosave") != ""
		if r, err = s.t.Analyze(c.Request.Context(), opts); err != nil {
			s.failJSON(c, err)
			return
		}
	}
	out := analysisJSON{At: r.At, SnapshotID: r.SnapshotID, Analysis: r.Analysis, Alerts: []alertJSON{}}
	for _, al := range r.Alerts {
		out.Alerts = append(out.Alerts, alertJSON{Kind: al.Kind.String(), Symbol: al.Symbol, Wallet: al.Wallet, Message: al.String()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) apiSummary(c *gin.Context) {
	sum, err := s.t.Summary(c.Request.Context(), c.Query("wallet"))
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) apiAutoUpdate(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

func (s *Server) apiStartAutoUpdate(c *gin.Context) {
	interval, maxRuns, err := autoUpdateForm(c)
	if err == nil {
		err = s.startPoller(options(c), interval, maxRuns)
	}
	if err != nil {
		s.failJSON(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.status())
}

func (s *Server) apiStopAutoUpdate(c *gin.Context) {
	s.stopPoller()
	c.JSON(http.StatusOK, s.status())
}
