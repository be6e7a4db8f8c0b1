package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/erazemk/resell/internal/model"
)

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func printPage(w io.Writer, p *model.Page) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tSIZE\tCONDITION\tPRICE\tSELLER")
	for _, it := range p.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, it.Brand, it.Size, it.Condition, formatPrice(it.Price), it.Username)
	}
	tw.Flush()

	fmt.Fprintf(w, "Page %d of %d (%d items)\n", p.Page+1, max(p.TotalPages, 1), p.TotalElements)
}

func printItem(w io.Writer, it *model.Item) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", it.ID)
	fmt.Fprintf(tw, "Name\t%s\n", it.Name)
	fmt.Fprintf(tw, "Brand\t%s\n", it.Brand)
	fmt.Fprintf(tw, "Size\t%s\n", it.Size)
	fmt.Fprintf(tw, "Condition\t%s\n", it.Condition)
	fmt.Fprintf(tw, "Price\t%s\n", formatPrice(it.Price))
	fmt.Fprintf(tw, "Status\t%s\n", it.Status)
	fmt.Fprintf(tw, "Seller\t%s\n", it.Username)
	fmt.Fprintf(tw, "Listed\t%s\n", it.ListedAt.Local().Format(time.DateTime))
	tw.Flush()
}

func printTransactions(w io.Writer, username string, txs []model.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tITEM\tROLE\tOTHER PARTY\tAMOUNT")
	for _, tx := range txs {
		role, other, amount := "bought", tx.Seller, tx.Amount
		if tx.Seller == username {
			role, other, amount = "sold", tx.Buyer, tx.Amount-tx.Commission
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.CreatedAt.Local().Format(time.DateOnly), tx.ItemName, role, other, formatPrice(amount))
	}
	tw.Flush()
}
