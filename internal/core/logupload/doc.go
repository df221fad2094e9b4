// Package logupload 实现日志上传策略
//
// PeriodicStrategy 按固定周期决定是否上传；Uploader 在需要上传时找到承载
// 日志服务的通道并请求同步。
//
//	strategy := logupload.NewPeriodicStrategy(5*time.Minute, clock.New())
//	up, _ := logupload.NewUploader(channelManager, strategy, storage)
//	go up.Run(ctx, 10*time.Second)
package logupload
