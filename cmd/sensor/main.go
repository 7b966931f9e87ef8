// Command sensor replays historical consumption files over MQTT, acting as
// a simulated smart sensor. It reads one CSV file per day, named
// YYYY-MM-DD.csv, and publishes the first column of every record to the
// topic at a fixed pace.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	var (
		brokerURL = flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
		topic     = flag.String("topic", "electricity", "publish topic")
		dataDir   = flag.String("data", "watt_data", "directory holding per-day CSV files")
		from      = flag.String("from", "2012-06-01", "first replay date (YYYY-MM-DD)")
		to        = flag.String("to", "2013-01-13", "last replay date (YYYY-MM-DD)")
		interval  = flag.Duration("interval", time.Second, "pause between samples")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	start, err := time.Parse("2006-01-02", *from)
	if err != nil {
		logger.Fatalf("bad -from date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *to)
	if err != nil {
		logger.Fatalf("bad -to date: %v", err)
	}
	if end.Before(start) {
		logger.Fatal("-to must not precede -from")
	}

	opts := paho.NewClientOptions().AddBroker(*brokerURL).SetClientID("watt-matters-sensor")
	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		path := filepath.Join(*dataDir, date+".csv")
		logger.Printf("replaying %s", date)
		if err := replayFile(client, *topic, path, *interval); err != nil {
			logger.Fatalf("replay %s: %v", date, err)
		}
	}
}

func replayFile(client paho.Client, topic, path string, interval time.Duration) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) == 0 {
			continue
		}

		token := client.Publish(topic, 0, false, record[0])
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		time.Sleep(interval)
	}
}
