// Command inspect prints the badger message log as a table.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/CUknot/messenger_backend/store"
)

func main() {
	dbPath := flag.String("db", "data/messages", "Path to badger DB")
	prefix := flag.String("prefix", "", `Key prefix to scan, e.g. "room:" or "dm:"`)
	limit := flag.Int("limit", 0, "Stop after this many records (0 = all)")
	tz := flag.String("tz", "UTC", "Zone used to print timestamps")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatal("Unknown zone: ", err)
	}

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "ID", "From", "To", "At", "Read", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	errStop := errors.New("limit reached")
	err = store.ScanLog(db, *prefix, func(key string, rec store.LogRecord) error {
		if *limit > 0 && rows == *limit {
			return errStop
		}
		kind, from, to := color.Cyan.Render("room"), rec.UserID, rec.RoomID
		if rec.SenderID != 0 {
			kind, from, to = color.Magenta.Render("dm"), rec.SenderID, rec.ReceiverID
		}
		read := ""
		if rec.SenderID != 0 {
			read = color.Red.Render("no")
			if rec.IsRead {
				read = color.Green.Render("yes")
			}
		}
		content := []rune(rec.Content)
		if len(content) > 60 {
			content = append(content[:57], []rune("...")...)
		}

		table.Append([]string{
			key,
			kind,
			strconv.FormatUint(uint64(rec.ID), 10),
			strconv.FormatUint(uint64(from), 10),
			strconv.FormatUint(uint64(to), 10),
			rec.CreatedAt.In(loc).Format("2006/01/02 15:04:05"),
			read,
			string(content),
		})
		rows++
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		log.Fatal(err)
	}

	table.Render()
	fmt.Println(color.Gray.Sprintf("%d record(s)", rows))
}
