// Package bind mirrors named reactive cells to HTTP and WebSocket clients.
//
// A Registry maps names to cells. A Server exposes the registry over a chi
// router and runs every cell access on a microtask.Loop, so cells never see
// more than one goroutine:
//
//	loop := microtask.NewLoop()
//	go loop.Run(ctx)
//
//	reg := bind.NewRegistry()
//	counter, _ := bind.NewCounter(reg, 0, reactive.WithScheduler(loop))
//
//	srv := bind.NewServer(loop, reg, bind.DefaultServerConfig(), logger)
//	http.ListenAndServe(":8080", srv.Handler())
//
// Routes:
//
//	GET /cells          current value of every cell
//	GET /cells/{name}   current value of one cell
//	PUT /cells/{name}   set a cell from {"value": ...}
//	GET /actions        names of the registered actions
//	POST /actions/{name} run an action, respond with every cell's value
//	GET /ws             live stream of cell values
//
// # WebSocket Protocol
//
// Frames are JSON text messages. On connect the server sends one value
// frame per cell, then another whenever a cell notifies:
//
//	{"type":"value","cell":"count","value":5}
//
// Clients set cells with:
//
//	{"type":"set","cell":"count","value":6}
//
// and run actions with:
//
//	{"type":"action","action":"increment"}
//
// Failures are reported to the sending client only. The error field holds
// the full error object, the same one HTTP error responses carry:
//
//	{"type":"error","cell":"double","code":"E101","message":"E101: ...","error":{...}}
//
// A value frame identical to the previous frame sent to the same client for
// the same cell is not sent again.
package bind
