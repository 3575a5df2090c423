package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mechkit/mechkit/pkg/gateway"
	"github.com/mechkit/mechkit/pkg/mech"
)

func main() {
	url := flag.String("url", "ws://127.0.0.1:8089/mech", "")
	toolkit := flag.String("toolkit", "", "")
	op := flag.String("op", "", "")
	field := flag.String("field", "command", "argument key the operation name goes in")
	rawArgs := flag.String("args", "", "extra arguments as a JSON object")
	flag.Parse()
	if *toolkit == "" {
		fmt.Println("usage: ws_call -toolkit=coingecko -op=ping [-field=command] [-args='{...}'] [-url=...]")
		os.Exit(1)
	}

	args := mech.Args{}
	if *rawArgs != "" {
		if err := json.Unmarshal([]byte(*rawArgs), &args); err != nil {
			fmt.Println("args error:", err)
			os.Exit(1)
		}
	}
	if *op != "" {
		args[*field] = *op
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		fmt.Println("dial error:", err)
		os.Exit(1)
	}
	defer conn.Close()

	req := gateway.Request{ID: uuid.NewString(), Toolkit: *toolkit, Args: args}
	if err := conn.WriteJSON(req); err != nil {
		fmt.Println("write error:", err)
		os.Exit(1)
	}

	var reply gateway.Reply
	if err := conn.ReadJSON(&reply); err != nil {
		fmt.Println("read error:", err)
		os.Exit(1)
	}
	out, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		fmt.Println("encode error:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
