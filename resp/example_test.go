package resp_test

import (
	"fmt"

	"github.com/pior/redis/resp"
)

func ExampleDecode() {
	buf := []byte("*2\r\n$5\r\nhello\r\n:42\r\n+extra\r\n")

	v, rest, err := resp.Decode(buf)
	if err != nil {
		panic(err)
	}

	fmt.Println(v.Type)
	fmt.Println(v.Elems[0].Text())
	fmt.Println(v.Elems[1].Int)
	fmt.Printf("%q\n", rest)
	// Output:
	// array
	// hello
	// 42
	// "+extra\r\n"
}

func ExampleIsIncomplete() {
	// A reassembly loop: frames that ran off the end of the buffer are
	// retried once more bytes arrive, anything else is fatal.
	buf := []byte("$11\r\nhello")

	_, _, err := resp.Decode(buf)
	fmt.Println(resp.IsIncomplete(err))

	buf = append(buf, " world\r\n"...)
	v, _, err := resp.Decode(buf)
	fmt.Println(resp.IsIncomplete(err), err == nil, v.Text())
	// Output:
	// true
	// false true hello world
}

func ExampleAppendCommand() {
	cmd := resp.AppendCommand(nil, []byte("SET"), []byte("key"), []byte("value"))
	fmt.Printf("%q\n", cmd)
	// Output:
	// "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n"
}
