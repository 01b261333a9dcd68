package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"github.com/peterbourgon/ff/v3/ffcli"
)

const (
	defaultBroker         = "tcp://localhost:1883"
	defaultTopicPrefix    = "avrsig"
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesce     = 250 // milliseconds
)

// publisher sends one message to a broker.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Close()
}

type publishConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer

	broker   string
	prefix   string
	clientID string
	username string
	password string
	qos      int
	retain   bool
	format   string

	dial func(c *publishConfig) (publisher, error)
}

func (c *publishConfig) Exec(ctx context.Context, _ []string) error {
	if c.qos < 0 || c.qos > 2 {
		return errors.New("avrsig: qos must be 0, 1 or 2")
	}

	d, closer, err := newDev(ctx, c.rootConfig, c.in)
	if err != nil {
		return err
	}
	defer closer.Close()

	di := getDeviceInfo(d)
	var payload []byte
	switch c.format {
	case outputJSON:
		payload, err = json.Marshal(di)
	case outputCBOR:
		var rec sigrow.Record
		if rec, err = sigrow.NewRecord(d.Row()); err == nil {
			payload, err = rec.MarshalCBOR()
		}
	default:
		err = fmt.Errorf("avrsig: valid formats are %s, %s", outputJSON, outputCBOR)
	}
	if err != nil {
		return err
	}

	p, err := c.dial(c)
	if err != nil {
		return err
	}
	defer p.Close()

	topic := deviceTopic(c.prefix, di)
	if err := p.Publish(topic, byte(c.qos), c.retain, payload); err != nil {
		return err
	}
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "published %d bytes to %s\n", len(payload), topic)
	}
	fmt.Fprintln(c.out, topic)
	return nil
}

// deviceTopic returns <prefix>/<chip>/<fingerprint>. The fingerprint is cut
// to 16 hex digits which keeps topics readable in broker tooling.
func deviceTopic(prefix string, di *deviceInfo) string {
	fp := di.Fingerprint
	if len(fp) > 16 {
		fp = fp[:16]
	}
	name := strings.ToLower(di.Name)
	return strings.Join([]string{strings.TrimSuffix(prefix, "/"), name, fp}, "/")
}

type mqttPublisher struct {
	client pahomqtt.Client
}

func dialMQTT(c *publishConfig) (publisher, error) {
	clientID := c.clientID
	if clientID == "" {
		clientID = "avrsig-" + uuid.New().String()[:8]
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(c.broker)
	opts.SetClientID(clientID)
	if c.username != "" {
		opts.SetUsername(c.username)
		opts.SetPassword(c.password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectTimeout(defaultConnectTimeout)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("avrsig: timeout connecting to %s", c.broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("avrsig: failed to connect to %s: %w", c.broker, err)
	}
	return &mqttPublisher{client}, nil
}

func (p *mqttPublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("avrsig: timeout publishing to %s", topic)
	}
	return token.Error()
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(disconnectQuiesce)
}

func newPublishCmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := publishConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
		dial:       dialMQTT,
	}

	fs := flag.NewFlagSet("avrsig publish", flag.ExitOnError)
	fs.StringVar(&cfg.broker, "broker", defaultBroker, "MQTT broker url")
	fs.StringVar(&cfg.prefix, "topic", defaultTopicPrefix, "topic prefix, the chip name and fingerprint are appended")
	fs.StringVar(&cfg.clientID, "client-id", "", "MQTT client id, random when empty")
	fs.StringVar(&cfg.username, "username", "", "MQTT username")
	fs.StringVar(&cfg.password, "password", "", "MQTT password")
	fs.IntVar(&cfg.qos, "qos", 1, "MQTT quality of service")
	fs.BoolVar(&cfg.retain, "retain", true, "publish as retained message")
	fs.StringVar(&cfg.format, "format", outputJSON, "payload format: json or cbor")
	rootConfig.registerFlags(fs)

	return setupCommand(&ffcli.Command{
		Name:       "publish",
		ShortUsage: "publish",
		ShortHelp:  "Publishes the device identity to an MQTT broker.",
		LongHelp: "Publishes the device identity to an MQTT broker.\n\n" +
			"The message is sent to <topic>/<chip>/<fingerprint> so an inventory\n" +
			"service can subscribe to <topic>/# and track every programmed part.",
		FlagSet: fs,
		Exec:    cfg.Exec,
	})
}
