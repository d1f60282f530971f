// Command sercom-frame serializes a single frame to stdout, or decodes
// one from stdin. Useful for poking a peer implementation by hand:
//
//	sercom-frame -sender 1 -receiver 2 -data 'hello' | nc host 7700
//	sercom-frame -decode < capture.bin
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"sercom-core/pkg/frame"
)

func main() {
	sender := flag.Uint("sender", 0, "sender id (0-255)")
	receiver := flag.Uint("receiver", 0, "receiver id (0-255)")
	data := flag.String("data", "", "payload bytes")
	decode := flag.Bool("decode", false, "decode a frame from stdin instead")
	hexOut := flag.Bool("hex", false, "print wire bytes as hex instead of raw")
	flag.Parse()

	if *decode {
		if err := decodeStdin(); err != nil {
			fmt.Fprintf(os.Stderr, "sercom-frame: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *sender > 255 || *receiver > 255 {
		fmt.Fprintln(os.Stderr, "sercom-frame: sender and receiver must fit a byte")
		os.Exit(1)
	}
	f := frame.Frame{Sender: uint8(*sender), Receiver: uint8(*receiver), Data: []byte(*data)}
	wire, err := frame.Encode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sercom-frame: %v\n", err)
		os.Exit(1)
	}

	if *hexOut {
		fmt.Printf("% x\n", wire)
		return
	}
	os.Stdout.Write(wire)
}

func decodeStdin() error {
	wire, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	f, err := frame.Decode(wire)
	if err != nil {
		return err
	}
	sum, err := f.CRC32()
	if err != nil {
		return err
	}
	fmt.Printf("sender=%d receiver=%d len=%d crc32=%#08x\n", f.Sender, f.Receiver, len(f.Data), sum)
	fmt.Printf("data=%q\n", f.Data)
	return nil
}
