// Package platform 实现平台消息的二进制编解码
//
// 平台消息由消息头和若干扩展组成，所有多字节整数均为大端序（网络字节序）。
//
// # 消息头（8 字节）
//
//	+----------------+--------------------+------------------+
//	| protocol_id u32| protocol_version u16| extension_count u16|
//	+----------------+--------------------+------------------+
//
// # 扩展头（8 字节）
//
//	+---------+-------------+------------+
//	| type u8 | options u24 | length u32 |
//	+---------+-------------+------------+
//
// length 为扩展负载长度，不含扩展头本身。
//
// # 使用示例
//
//	buf := make([]byte, size)
//	w := platform.NewWriter(buf)
//	if err := w.WriteExtensionHeader(platform.ExtensionBootstrap, 0, payloadLen); err != nil {
//	    return err
//	}
//	w.WriteUint16(requestID)
//
// Writer 和 Reader 都不是并发安全的。
package platform
