package platform

import (
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-devclient/pkg/types"
)

// Reader 从字节切片顺序读取
//
// 数据不足时返回 types.ErrReadFailed，读位置保持不变。
type Reader struct {
	buf []byte
	pos int
}

// NewReader 创建读取器
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Read 读取 n 个字节，返回的切片引用底层缓冲区
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes, %d left", types.ErrReadFailed, n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint16 读取大端序 16 位整数
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 读取大端序 32 位整数
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadExtensionHeader 读取扩展头
func (r *Reader) ReadExtensionHeader() (ExtensionHeader, error) {
	b, err := r.Read(ExtensionHeaderSize)
	if err != nil {
		return ExtensionHeader{}, err
	}
	word := binary.BigEndian.Uint32(b[0:4])
	return ExtensionHeader{
		Type:    ExtensionType(word >> 24),
		Options: word & maxOptions,
		Length:  binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// ReadMessageHeader 读取消息头
func (r *Reader) ReadMessageHeader() (MessageHeader, error) {
	b, err := r.Read(MessageHeaderSize)
	if err != nil {
		return MessageHeader{}, err
	}
	return MessageHeader{
		ProtocolID:      binary.BigEndian.Uint32(b[0:4]),
		ProtocolVersion: binary.BigEndian.Uint16(b[4:6]),
		ExtensionCount:  binary.BigEndian.Uint16(b[6:8]),
	}, nil
}

// Remaining 返回剩余未读字节数
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}
