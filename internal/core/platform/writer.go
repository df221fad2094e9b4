package platform

import (
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-devclient/pkg/types"
)

// Writer 向调用方提供的缓冲区顺序写入
//
// 缓冲区空间不足时返回 types.ErrWriteFailed，且该次调用不写入任何字节。
type Writer struct {
	buf []byte
	pos int
}

// NewWriter 创建写入器
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Write 写入原始字节
func (w *Writer) Write(p []byte) error {
	if len(p) > w.Remaining() {
		return fmt.Errorf("%w: need %d bytes, %d left", types.ErrWriteFailed, len(p), w.Remaining())
	}
	w.pos += copy(w.buf[w.pos:], p)
	return nil
}

// WriteUint16 以大端序写入 16 位整数
func (w *Writer) WriteUint16(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return w.Write(b[:])
}

// WriteUint32 以大端序写入 32 位整数
func (w *Writer) WriteUint32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return w.Write(b[:])
}

// WriteExtensionHeader 写入扩展头
func (w *Writer) WriteExtensionHeader(extType ExtensionType, options, length uint32) error {
	if options > maxOptions {
		return fmt.Errorf("%w: extension options 0x%X exceed 24 bits", types.ErrBadParam, options)
	}

	var b [ExtensionHeaderSize]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(extType)<<24|options)
	binary.BigEndian.PutUint32(b[4:8], length)
	return w.Write(b[:])
}

// WriteMessageHeader 写入消息头
func (w *Writer) WriteMessageHeader(h MessageHeader) error {
	var b [MessageHeaderSize]byte
	binary.BigEndian.PutUint32(b[0:4], h.ProtocolID)
	binary.BigEndian.PutUint16(b[4:6], h.ProtocolVersion)
	binary.BigEndian.PutUint16(b[6:8], h.ExtensionCount)
	return w.Write(b[:])
}

// Bytes 返回已写入的数据
func (w *Writer) Bytes() []byte {
	return w.buf[:w.pos]
}

// Len 返回已写入的字节数
func (w *Writer) Len() int {
	return w.pos
}

// Remaining 返回剩余可写字节数
func (w *Writer) Remaining() int {
	return len(w.buf) - w.pos
}
