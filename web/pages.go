package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/config"
	"github.com/etnz/cryptofolio/poller"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/etnz/cryptofolio/tracker"
	"github.com/gin-gonic/gin"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

type portfolioView struct {
	Wallet  string
	Wallets []string
	Entries cryptofolio.Entries
	Summary *cryptofolio.Summary
	Report  template.HTML
}

func (s *Server) portfolioPage(c *gin.Context) {
	ctx := c.Request.Context()
	wallet := c.Query("wallet")
	wallets, err := s.t.Wallets(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	entries, err := s.t.Entries(ctx, wallet)
	if err != nil {
		s.fail(c, err)
		return
	}
	v := portfolioView{Wallet: wallet, Wallets: wallets, Entries: entries}
	if len(entries) > 0 {
		v.Summary = cryptofolio.Summarize(entries, s.t.Currency())
		v.Report = s.html(renderer.SummaryMarkdown(v.Summary))
	}
	s.render(c, http.StatusOK, "portfolio", page{
		Title:   "Portfolio",
		Flash:   c.Query("flash"),
		Content: v,
	})
}

// entryForm is the content of the purchase, staking and edit forms.
type entryForm struct {
	Action   string
	Staking  bool
	ID       int64
	Coin     string
	Symbol   string
	Amount   string
	Price    string
	FeeBuy   string
	FeeSell  string
	Type     string
	Wallet   string
	Currency string
	Types    []string
	Wallets  []string
}

var coinTypes = []string{cryptofolio.Classic.String(), cryptofolio.Risk.String(), cryptofolio.Stable.String()}

func (s *Server) newForm(c *gin.Context, staking bool) entryForm {
	f := entryForm{
		Action:   "/purchases",
		Staking:  staking,
		FeeBuy:   "0",
		FeeSell:  "0",
		Type:     cryptofolio.Classic.String(),
		Currency: s.t.Currency(),
		Types:    coinTypes,
	}
	if staking {
		f.Action = "/staking"
	}
	f.Wallets, _ = s.t.Wallets(c.Request.Context())
	return f
}

// bind reads the posted form fields.
func (f *entryForm) bind(c *gin.Context) {
	f.Coin = c.PostForm("coin")
	f.Symbol = c.PostForm("symbol")
	f.Amount = c.PostForm("amount")
	f.Price = c.PostForm("price")
	f.FeeBuy = c.DefaultPostForm("fee_buy", "0")
	f.FeeSell = c.DefaultPostForm("fee_sell", "0")
	f.Type = c.DefaultPostForm("type", cryptofolio.Classic.String())
	f.Wallet = strings.TrimSpace(c.PostForm("wallet"))
}

// values parses the form into an entry of the given kind.
func (f *entryForm) values(currency string) (cryptofolio.Entry, error) {
	e := cryptofolio.Entry{Coin: f.Coin, Symbol: f.Symbol, Wallet: f.Wallet}
	if e.Wallet == "" {
		return e, badRequest("wallet is required")
	}
	var err error
	if e.Amount, err = cryptofolio.ParseQuantity(f.Amount); err != nil {
		return e, badRequest("invalid amount %q", f.Amount)
	}
	if e.Type, err = cryptofolio.ParseCoinType(f.Type); err != nil {
		return e, badRequest("invalid type %q", f.Type)
	}
	if f.Staking {
		e.Kind = cryptofolio.Staking
		e.BuyPrice = cryptofolio.M(0, currency)
		return e, nil
	}
	e.Kind = cryptofolio.Buy
	if e.BuyPrice, err = cryptofolio.ParseMoney(f.Price, currency); err != nil {
		return e, badRequest("invalid price %q", f.Price)
	}
	if e.FeeBuyPercent, err = cryptofolio.ParsePercent(f.FeeBuy); err != nil {
		return e, badRequest("invalid buy fee %q", f.FeeBuy)
	}
	if e.FeeSellPercent, err = cryptofolio.ParsePercent(f.FeeSell); err != nil {
		return e, badRequest("invalid sell fee %q", f.FeeSell)
	}
	return e, nil
}

func (s *Server) formPage(c *gin.Context, code int, f entryForm, err error) {
	title := "Add a purchase"
	switch {
	case f.ID != 0:
		title = fmt.Sprintf("Edit entry #%d", f.ID)
	case f.Staking:
		title = "Add a staking gain"
	}
	p := page{Title: title, Active: "entry", Content: f}
	if err != nil {
		p.Error = err.Error()
	}
	s.render(c, code, "entry", p)
}

func (s *Server) newPurchasePage(c *gin.Context) {
	s.formPage(c, http.StatusOK, s.newForm(c, false), nil)
}

func (s *Server) newStakingPage(c *gin.Context) {
	s.formPage(c, http.StatusOK, s.newForm(c, true), nil)
}

func (s *Server) createPurchase(c *gin.Context) { s.create(c, false) }
func (s *Server) createStaking(c *gin.Context)  { s.create(c, true) }

func (s *Server) create(c *gin.Context, staking bool) {
	f := s.newForm(c, staking)
	f.bind(c)
	e, err := f.values(s.t.Currency())
	if err == nil {
		if staking {
			e, err = s.t.AddStaking(c.Request.Context(), tracker.Staking{
				Coin: e.Coin, Symbol: e.Symbol, Amount: e.Amount, Type: e.Type, Wallet: e.Wallet,
			})
		} else {
			e, err = s.t.AddPurchase(c.Request.Context(), tracker.Purchase{
				Coin: e.Coin, Symbol: e.Symbol, Amount: e.Amount, Price: e.BuyPrice,
				FeeBuy: e.FeeBuyPercent, FeeSell: e.FeeSellPercent, Type: e.Type, Wallet: e.Wallet,
			})
		}
	}
	if err != nil {
		s.formPage(c, status(err), f, err)
		return
	}
	redirectFlash(c, fmt.Sprintf("Entry #%d added: %s %s.", e.ID, e.Amount, e.Symbol))
}

func redirectFlash(c *gin.Context, flash string) {
	c.Redirect(http.StatusSeeOther, "/portfolio?flash="+template.URLQueryEscaper(flash))
}

func entryID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid entry id %q", c.Param("id"))
	}
	return id, nil
}

func (s *Server) editEntryPage(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	e, err := s.t.Entry(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	f := s.newForm(c, e.Kind == cryptofolio.Staking)
	f.Action = fmt.Sprintf("/entries/%d", id)
	f.ID = id
	f.Coin = e.Coin
	f.Symbol = e.Symbol
	f.Amount = e.Amount.String()
	f.Price = e.BuyPrice.Decimal().String()
	f.FeeBuy = strconv.FormatFloat(float64(e.FeeBuyPercent), 'f', -1, 64)
	f.FeeSell = strconv.FormatFloat(float64(e.FeeSellPercent), 'f', -1, 64)
	f.Type = e.Type.String()
	f.Wallet = e.Wallet
	s.formPage(c, http.StatusOK, f, nil)
}

func (s *Server) updateEntry(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	old, err := s.t.Entry(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	f := s.newForm(c, old.Kind == cryptofolio.Staking)
	f.Action = fmt.Sprintf("/entries/%d", id)
	f.ID = id
	f.bind(c)
	e, err := f.values(s.t.Currency())
	if err == nil {
		e.ID = id
		e.CreatedAt = old.CreatedAt
		err = s.t.UpdateEntry(ctx, e)
	}
	if err != nil {
		s.formPage(c, status(err), f, err)
		return
	}
	redirectFlash(c, fmt.Sprintf("Entry #%d updated.", id))
}

func (s *Server) deleteEntry(c *gin.Context) {
	id, err := entryID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.t.DeleteEntry(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	redirectFlash(c, fmt.Sprintf("Entry #%d deleted.", id))
}

type analysisView struct {
	Wallets  []string
	Wallet   string
	ByWallet bool
	Report   template.HTML
	Status   poller.Status
	Minutes  string
	Max      int
}

// options reads the analysis options from the query or the posted form.
func options(c *gin.Context) tracker.Options {
	field := func(key string) string {
		if v, ok := c.GetPostForm(key); ok {
			return v
		}
		return c.Query(key)
	}
	return tracker.Options{
		ByWallet: field("by_wallet") != "",
		Wallet:   field("wallet"),
	}
}

func (s *Server) analysisPage(c *gin.Context) {
	ctx := c.Request.Context()
	opts := options(c)
	wallets, err := s.t.Wallets(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	r := s.t.LastReport()
	if c.Query("run") != "" {
		if r, err = s.t.Analyze(ctx, opts); err != nil {
			s.fail(c, err)
			return
		}
	}
	v := analysisView{
		Wallets:  wallets,
		Wallet:   opts.Wallet,
		ByWallet: opts.ByWallet,
		Status:   s.status(),
		Minutes:  strconv.FormatFloat(s.cfg.Interval.Minutes(), 'f', -1, 64),
		Max:      s.cfg.MaxUpdates,
	}
	if r != nil {
		v.Report = s.html(renderer.AnalysisMarkdown(r.Analysis, r.Alerts, r.At))
	}
	s.render(c, http.StatusOK, "analysis", page{Title: "Analysis", Flash: c.Query("flash"), Content: v})
}

// startPoller starts a background auto-update.
func (s *Server) startPoller(opts tracker.Options, interval time.Duration, maxRuns int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poller != nil && s.poller.Status().Running {
		return poller.ErrRunning
	}
	p := poller.New(interval, maxRuns, s.t.Job(opts, nil), s.log)
	if err := p.Start(context.Background()); err != nil {
		return err
	}
	s.poller = p
	return nil
}

func (s *Server) stopPoller() {
	s.mu.Lock()
	p := s.poller
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

func (s *Server) status() poller.Status {
	s.mu.Lock()
	p := s.poller
	s.mu.Unlock()
	if p == nil {
		return poller.Status{Interval: s.cfg.Interval.String(), MaxRuns: s.cfg.MaxUpdates}
	}
	return p.Status()
}

// autoUpdateForm reads the auto-update interval in minutes and the number of runs.
func autoUpdateForm(c *gin.Context) (time.Duration, int, error) {
	minutes, err := strconv.ParseFloat(c.PostForm("minutes"), 64)
	if err != nil || minutes <= 0 {
		return 0, 0, badRequest("invalid interval %q", c.PostForm("minutes"))
	}
	if interval := time.Duration(minutes * float64(time.Minute)); interval < config.MinInterval {
		return 0, 0, badRequest("interval %v is shorter than %v", interval, config.MinInterval)
	}
	maxRuns, err := strconv.Atoi(c.DefaultPostForm("max_updates", "0"))
	if err != nil || maxRuns < 0 {
		return 0, 0, badRequest("invalid number of updates %q", c.PostForm("max_updates"))
	}
	return time.Duration(minutes * float64(time.Minute)), maxRuns, nil
}

func (s *Server) startAutoUpdate(c *gin.Context) {
	interval, maxRuns, err := autoUpdateForm(c)
	if err == nil {
		err = s.startPoller(options(c), interval, maxRuns)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/analysis?flash="+template.URLQueryEscaper("Auto-update started every "+interval.String()+"."))
}

func (s *Server) stopAutoUpdate(c *gin.Context) {
	s.stopPoller()
	c.Redirect(http.StatusSeeOther, "/analysis?flash="+template.URLQueryEscaper("Auto-update stopped."))
}

var periods = []string{"7", "30", "90", "365", "max"}

type visualizationView struct {
	Symbols []string
	Symbol  string
	Coins   []string
	Coin    string
	Periods []string
	Days    string
	By      string
	Bys     []string
	Empty   bool
	Summary template.HTML
}

func (s *Server) visualizationPage(c *gin.Context) {
	ctx := c.Request.Context()
	symbols, err := s.t.HistorySymbols(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	entries, err := s.t.Entries(ctx, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	v := visualizationView{
		Symbols: symbols,
		Symbol:  c.Query("symbol"),
		Coins:   entries.Coins(),
		Coin:    c.Query("coin"),
		Periods: periods,
		Days:    c.DefaultQuery("days", "30"),
		By:      c.DefaultQuery("by", "coin"),
		Bys:     []string{"coin", "wallet", "type"},
		Empty:   len(entries) == 0,
	}
	if v.Symbol == "" && len(symbols) > 0 {
		v.Symbol = symbols[0]
	}
	if v.Coin == "" && len(v.Coins) > 0 {
		v.Coin = v.Coins[0]
	}
	if !v.Empty {
		v.Summary = s.html(renderer.SummaryMarkdown(cryptofolio.Summarize(entries, s.t.Currency())))
	}
	s.render(c, http.StatusOK, "visualization", page{Title: "Visualization", Content: v})
}

type settingsView struct {
	Database template.HTML
	Schema   template.HTML
	Config   string
}

func (s *Server) settingsPage(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := s.t.DatabaseInfo(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	tables, err := s.t.Schema(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	v := settingsView{
		Database: s.html(renderer.DatabaseMarkdown(info)),
		Schema:   s.html(renderer.SchemaMarkdown(tables)),
	}
	if s.cfg.Settings != nil {
		out, err := s.cfg.Settings()
		if err != nil {
			s.fail(c, err)
			return
		}
		v.Config = string(out)
	}
	s.render(c, http.StatusOK, "settings", page{Title: "Settings", Flash: c.Query("flash"), Content: v})
}

func (s *Server) exportEntries(c *gin.Context) {
	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Disposition", `attachment; filename="portfolio_export.jsonl"`)
	n, err := s.t.Export(c.Request.Context(), c.Writer, c.Query("wallet"))
	if err != nil {
		s.log.Error("export failed", "error", err)
		return
	}
	s.log.Info("entries exported", "count", n)
}

func (s *Server) vacuum(c *gin.Context) {
	if err := s.t.Vacuum(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/settings?flash="+template.URLQueryEscaper("Database vacuumed."))
}
