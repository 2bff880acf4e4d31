package main

import (
	"fmt"
	"io"
	"time"

	"github.com/paywithextend/extend-go"
)

const notAvailable = "N/A"

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func formatTime(t extend.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.UTC().Format(time.RFC3339)
}

func writeCreditCards(w io.Writer, cards []extend.CreditCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No credit cards found.")
		return
	}

	fmt.Fprint(w, "Credit Cards:\n\n")
	for _, cc := range cards {
		issuer := notAvailable
		if cc.Issuer != nil {
			issuer = orNA(cc.Issuer.Name)
		}
		fmt.Fprintf(w, "- ID: %s\n  Name: %s\n  Status: %s\n  Last 4: %s\n  Issuer: %s\n\n",
			cc.ID, cc.DisplayName, cc.Status, orNA(cc.Last4), issuer)
	}
}

func writeVirtualCards(w io.Writer, cards []extend.VirtualCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No virtual cards found.")
		return
	}

	fmt.Fprint(w, "Virtual Cards:\n\n")
	for _, vc := range cards {
		fmt.Fprintf(w, "- ID: %s\n  Name: %s\n  Status: %s\n  Balance: %s\n  Expires: %s\n\n",
			vc.ID, vc.DisplayName, vc.Status, vc.BalanceCents, orNA(vc.Expires))
	}
}

func writeVirtualCard(w io.Writer, vc *extend.VirtualCard) {
	fmt.Fprint(w, "Virtual Card Details:\n\n")
	fmt.Fprintf(w, "ID: %s\n", vc.ID)
	fmt.Fprintf(w, "Name: %s\n", vc.DisplayName)
	fmt.Fprintf(w, "Status: %s\n", vc.Status)
	fmt.Fprintf(w, "Balance: %s\n", vc.BalanceCents)
	fmt.Fprintf(w, "Spent: %s\n", vc.SpentCents)
	fmt.Fprintf(w, "Limit: %s\n", vc.LimitCents)
	fmt.Fprintf(w, "Last 4: %s\n", orNA(vc.Last4))
	fmt.Fprintf(w, "Expires: %s\n", orNA(vc.Expires))
	fmt.Fprintf(w, "Valid From: %s\n", formatTime(vc.ValidFrom))
	fmt.Fprintf(w, "Valid To: %s\n", formatTime(vc.ValidTo))
	fmt.Fprintf(w, "Recurs: %t\n", vc.Recurs)
	fmt.Fprintf(w, "Recipient: %s\n", orNA(vc.RecipientID))
	fmt.Fprintf(w, "Notes: %s\n", orNA(vc.Notes))
}

func writeTransactions(w io.Writer, txns []extend.Transaction) {
	if len(txns) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return
	}

	fmt.Fprint(w, "Recent Transactions:\n\n")
	for _, t := range txns {
		fmt.Fprintf(w, "- ID: %s\n  Merchant: %s\n  Amount: %s\n  Status: %s\n  Date: %s\n\n",
			t.ID, orNA(t.MerchantName), t.Amount(), t.Status, formatTime(extend.Time{Time: t.Date()}))
	}
}

func writeTransaction(w io.Writer, t *extend.Transaction) {
	fmt.Fprint(w, "Transaction Details:\n\n")
	fmt.Fprintf(w, "ID: %s\n", t.ID)
	fmt.Fprintf(w, "Merchant: %s\n", orNA(t.MerchantName))
	fmt.Fprintf(w, "Amount: %s\n", t.Amount())
	fmt.Fprintf(w, "Status: %s\n", t.Status)
	fmt.Fprintf(w, "Type: %s\n", t.Type)
	fmt.Fprintf(w, "Card: %s\n", orNA(t.VirtualCardID))
	fmt.Fprintf(w, "Authorization Date: %s\n", formatTime(t.AuthedAt))
	fmt.Fprintf(w, "Clearing Date: %s\n", formatTime(t.ClearedAt))
	fmt.Fprintf(w, "MCC: %s\n", orNA(t.MCC))
	fmt.Fprintf(w, "Notes: %s\n", orNA(t.Notes))
}
