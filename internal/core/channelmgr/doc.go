// Package channelmgr 实现传输通道管理器
//
// # 核心功能
//
// 1. 通道注册表 (Manager)
//   - 按通道标识去重注册/移除传输通道
//   - 最近注册的通道排在最前，按服务查找时优先返回
//   - 移除或关闭时调用通道的释放钩子
//
// 2. 通道标识 (ComputeChannelID)
//   - 由通道句柄、具体类型和释放能力计算 32 位标识
//   - 多项式哈希：种子 1，乘数 31
//
// 3. 引导请求 (Bootstrap)
//   - 缓存请求大小，任何注册/移除都会使缓存失效
//   - 先计算大小，再序列化到调用方缓冲区
//
// # 引导请求格式
//
//	扩展头 (8 字节, type=bootstrap, options=0, length=payload)
//	request_id    u16
//	channel_count u16
//	channel_count × { protocol_id u32, protocol_version u16, reserved u16 = 0 }
//
// 所有整数为大端序。request_id 每次成功序列化递增 1，仅在管理器生命周期内有效。
//
// # 使用示例
//
//	mgr, err := channelmgr.NewManager(logger)
//	id, err := mgr.Add(tcpChannel)
//
//	size, err := mgr.BootstrapRequestSize()
//	buf := make([]byte, size)
//	err = mgr.SerializeBootstrapRequest(platform.NewWriter(buf))
//
//	ch, ok := mgr.FindChannelForService(types.ServiceLogging)
//
// # 查找策略
//
// FindChannelForService 按注册倒序遍历，返回第一个支持该服务的通道，
// 因此新注册的通道会覆盖旧通道。单个通道查询失败只记录日志并跳过。
//
// # 并发安全
//
// 所有方法由内部互斥锁保护。释放钩子在锁内调用，不能回调管理器。
// 管理器从不调用通道的 Sync。
package channelmgr
