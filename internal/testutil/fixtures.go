package testutil

// RequestFixtures are complete, well-formed request messages covering
// the framing modes spec §4.2.3 distinguishes: no body, known-size
// body, chunked body with a trailer, and Expect: 100-continue.
var RequestFixtures = [][]byte{
	[]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"),
	[]byte("POST /submit HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nhello"),
	[]byte("POST /upload HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\n0\r\nX-Trailer: done\r\n\r\n"),
	[]byte("POST /upload HTTP/1.1\r\nHost: example.com\r\nContent-Length: 3\r\nExpect: 100-continue\r\n\r\nabc"),
}

// ResponseFixtures are complete, well-formed response messages,
// including a 204 no-body response and a to-EOF response.
var ResponseFixtures = [][]byte{
	[]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"),
	[]byte("HTTP/1.1 204 No Content\r\n\r\n"),
	[]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"),
	[]byte("HTTP/1.1 200 OK\r\n\r\nbody without a length"),
}
