package handlers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pricepoint-backend/internal/domain"
)

// /p/{quoteId}/{token} — печатная версия КП по публичной ссылке
func (e *Env) HandlePublicQuotePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quoteId")
	token := chi.URLParam(r, "token")

	q, err := e.Store.GetQuote(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	if q.PublicToken == "" || subtle.ConstantTimeCompare([]byte(q.PublicToken), []byte(token)) != 1 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := quotePage.Execute(w, q); err != nil {
		e.Log.Warn("render quote page", zap.String("id", q.ID), zap.Error(err))
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// selections — "Operating System: windows, Nodes: 4" в стабильном порядке
func selections(sel domain.Selections) string {
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+sel[k].String())
	}
	return strings.Join(parts, ", ")
}

var quotePage = template.Must(template.New("quote").Funcs(template.FuncMap{
	"money":      money,
	"selections": selections,
	"join":       strings.Join,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>Quote {{.ID}}</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body {
			margin: 0;
			font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
			background: #f3f4f6;
			color: #111827;
		}
		.wrapper { padding: 24px; display: flex; justify-content: center; }
		.card {
			background: #ffffff;
			border-radius: 16px;
			box-shadow: 0 20px 45px rgba(15, 23, 42, 0.18);
			max-width: 760px;
			width: 100%;
			padding: 24px;
		}
		h1 { font-size: 20px; margin: 0 0 8px 0; }
		.badge {
			display: inline-flex;
			border-radius: 999px;
			padding: 2px 10px;
			font-size: 11px;
			background: #eef2ff;
			color: #4f46e5;
		}
		.meta { font-size: 12px; color: #6b7280; margin: 4px 0; }
		table { width: 100%; border-collapse: collapse; margin-top: 16px; font-size: 13px; }
		th, td { text-align: left; padding: 8px 4px; border-bottom: 1px solid #e5e7eb; }
		td.num, th.num { text-align: right; }
		.totals { margin-top: 16px; text-align: right; }
		.totals p { margin: 2px 0; }
		@media print { body { background: #fff; } .card { box-shadow: none; } }
	</style>
</head>
<body>
<div class="wrapper">
	<div class="card">
		<span class="badge">{{.Status}}</span>
		<h1>Quote {{.ID}}</h1>
		<p class="meta">Created {{.CreatedAt.Format "2006-01-02"}} · valid until {{.ValidUntil.Format "2006-01-02"}}</p>
		<p class="meta">{{.Customer.FullName}} · {{.Customer.Organization}} · {{.Customer.Email}} · {{.Customer.Mobile}}</p>

		<table>
			<thead>
				<tr><th>Item</th><th>Configuration</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Total</th></tr>
			</thead>
			<tbody>
			{{range .Items}}
				<tr>
					<td>{{.Name}}</td>
					<td>{{selections .SelectedConfigs}}{{if .SelectedAddons}}<br>+ {{join .SelectedAddons ", "}}{{end}}</td>
					<td class="num">{{.Quantity}}</td>
					<td class="num">{{money .UnitPrice}}</td>
					<td class="num">{{money .TotalPrice}}</td>
				</tr>
			{{else}}
				<tr><td colspan="5">No items</td></tr>
			{{end}}
			</tbody>
		</table>

		<div class="totals">
			<p>Subtotal: {{money .TotalEstimate}}</p>
			{{if .DiscountValue}}<p>Discount: −{{money .DiscountValue}}</p>{{end}}
			<p><strong>Total: {{money .NetTotal}}</strong></p>
		</div>
	</div>
</div>
</body>
</html>
`))
