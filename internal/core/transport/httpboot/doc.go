// Package httpboot 提供 HTTP 引导通道
//
// 引导通道只承载引导服务。设备启动时把引导请求 POST 到引导服务器，
// 响应体交给上层解析。
package httpboot
