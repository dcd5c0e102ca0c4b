package forwarder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"github.com/jd3nn1s/gp2ffb"
	"github.com/jd3nn1s/gp2ffb/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net"
	"time"
)

var maxFrameSize = binary.Size(Header{}) + binary.Size(Frame{})

// SendInterval limits the dashboard to 10Hz, it only needs the latest frame.
const SendInterval = 100 * time.Millisecond

type UDPForwarder struct {
	Config config.UDPConfig

	conn    net.Conn
	fwdChan chan Frame
}

func NewUDPForwarder(cfg config.UDPConfig) (*UDPForwarder, error) {
	udp := &UDPForwarder{
		Config:  cfg,
		fwdChan: make(chan Frame, 1),
	}
	if err := udp.connect(); err != nil {
		return nil, err
	}
	return udp, nil
}

func (udp *UDPForwarder) Close() error {
	return udp.conn.Close()
}

func (udp *UDPForwarder) Forward(cur *gp2ffb.Snapshot, prev *gp2ffb.Snapshot) error {
	frame := FrameFromSnapshot(cur)
	// keep the newest frame, the sender only wakes up every SendInterval
	select {
	case udp.fwdChan <- frame:
	default:
		select {
		case <-udp.fwdChan:
		default:
		}
		select {
		case udp.fwdChan <- frame:
		default:
		}
	}
	return nil
}

func (udp *UDPForwarder) Start(ctx context.Context) error {
	limiter := time.NewTicker(SendInterval)
	defer limiter.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-limiter.C:
		}
		select {
		case f := <-udp.fwdChan:
			if err := udp.forward(&f); err != nil {
				log.WithField("err", err).Error("unable to forward snapshot to server")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (udp *UDPForwarder) forward(f *Frame) error {
	buf := bytes.NewBuffer(make([]byte, 0, maxFrameSize))
	hdr := Header{
		Type: TypeForce,
	}
	if err := binary.Write(buf, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "unable to write udp packet header")
	}
	if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
		return errors.Wrap(err, "unable to write snapshot udp packet")
	}
	_, err := udp.conn.Write(buf.Bytes())
	return err
}

func (udp *UDPForwarder) connect() error {
	writeBufSize := maxFrameSize * 2

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d",
		udp.Config.Server,
		udp.Config.Port))
	if err != nil {
		return errors.Wrap(err, "unable to dial udp server")
	}
	udpConn := conn.(*net.UDPConn)
	if err = udpConn.SetWriteBuffer(writeBufSize); err != nil {
		return errors.Wrapf(err, "unable to set OS write buffer to %v", writeBufSize)
	}

	udp.conn = conn
	return nil
}
