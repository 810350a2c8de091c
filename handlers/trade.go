package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"paper-trader/portfolio"
)

// Index shows the portfolio valued at live prices.
func (h *Handler) Index(c *gin.Context) {
	v, err := h.portfolio.Valuate(c.Request.Context(), userID(c))
	if err != nil {
		log.Errorf("valuate user %d: %v", userID(c), err)
		h.apology(c, http.StatusInternalServerError, "could not value your portfolio")
		return
	}
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Flash":     popFlash(c),
		"Username":  username(c),
		"Valuation": v,
	})
}

// BuyForm renders the buy page.
func (h *Handler) BuyForm(c *gin.Context) {
	c.HTML(http.StatusOK, "buy.tmpl", gin.H{
		"Flash":    popFlash(c),
		"Username": username(c),
	})
}

// Buy executes a purchase at the live price.
func (h *Handler) Buy(c *gin.Context) {
	symbol := strings.TrimSpace(c.PostForm("symbol"))
	shares, err := parseShares(c.PostForm("shares"))
	if err != nil {
		h.renderError(c, "buy.tmpl", err, nil)
		return
	}

	q, err := h.portfolio.Buy(c.Request.Context(), userID(c), symbol, shares)
	if err != nil {
		h.renderError(c, "buy.tmpl", err, nil)
		return
	}
	setFlash(c, fmt.Sprintf("Success: bought %d share(s) of %s and debited cash", shares, q.Symbol))
	c.Redirect(http.StatusSeeOther, "/")
}

// SellForm renders the sell page with the user's held symbols.
func (h *Handler) SellForm(c *gin.Context) {
	holdings, err := h.portfolio.Holdings(c.Request.Context(), userID(c))
	if err != nil {
		h.renderError(c, "sell.tmpl", err, nil)
		return
	}
	c.HTML(http.StatusOK, "sell.tmpl", gin.H{
		"Flash":    popFlash(c),
		"Username": username(c),
		"Holdings": holdings,
	})
}

// Sell executes a sale at the live price.
func (h *Handler) Sell(c *gin.Context) {
	holdings, err := h.portfolio.Holdings(c.Request.Context(), userID(c))
	if err != nil {
		h.renderError(c, "sell.tmpl", err, nil)
		return
	}
	data := gin.H{"Holdings": holdings}

	symbol := strings.TrimSpace(c.PostForm("symbol"))
	shares, err := parseShares(c.PostForm("shares"))
	if err != nil {
		h.renderError(c, "sell.tmpl", err, data)
		return
	}

	q, err := h.portfolio.Sell(c.Request.Context(), userID(c), symbol, shares)
	if err != nil {
		h.renderError(c, "sell.tmpl", err, data)
		return
	}
	setFlash(c, fmt.Sprintf("Success: sold %d share(s) of %s and credited cash", shares, q.Symbol))
	c.Redirect(http.StatusSeeOther, "/")
}

// QuoteForm renders the quote page.
func (h *Handler) QuoteForm(c *gin.Context) {
	c.HTML(http.StatusOK, "quote.tmpl", gin.H{
		"Flash":    popFlash(c),
		"Username": username(c),
	})
}

// Quote fetches and shows a live quote. Nothing is stored.
func (h *Handler) Quote(c *gin.Context) {
	symbol := strings.TrimSpace(c.PostForm("symbol"))
	if symbol == "" {
		h.renderError(c, "quote.tmpl",
			fmt.Errorf("%w: must provide symbol", portfolio.ErrValidation), nil)
		return
	}

	q, err := h.provider.Lookup(c.Request.Context(), symbol)
	if err != nil {
		h.renderError(c, "quote.tmpl", err, nil)
		return
	}
	c.HTML(http.StatusOK, "quote.tmpl", gin.H{
		"Flash":    "Details fetched successfully",
		"Username": username(c),
		"Quote":    q,
	})
}

// History lists every ledger row for the user.
func (h *Handler) History(c *gin.Context) {
	rows, err := h.portfolio.History(c.Request.Context(), userID(c))
	if err != nil {
		h.renderError(c, "history.tmpl", err, nil)
		return
	}
	c.HTML(http.StatusOK, "history.tmpl", gin.H{
		"Flash":        popFlash(c),
		"Username":     username(c),
		"Transactions": rows,
	})
}
